package handler

import (
	"fmt"

	"github.com/neovim/go-client/nvim"
)

// YankRegister writes exported pages into a vim register, the unnamed one by
// default.
type YankRegister struct {
	vim      *nvim.Nvim
	register string
}

func newYankRegister(vim *nvim.Nvim, register string) *YankRegister {
	return &YankRegister{
		vim:      vim,
		register: register,
	}
}

func (yr *YankRegister) Write(p []byte) (int, error) {
	if yr.vim == nil {
		return 0, errNoVim
	}

	err := yr.vim.Call("setreg", nil, yr.register, string(p))
	if err != nil {
		return 0, fmt.Errorf("yr.vim.Call: %w", err)
	}

	return len(p), nil
}
