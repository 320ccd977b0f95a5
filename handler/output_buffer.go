package handler

import (
	"bufio"
	"bytes"
	"errors"

	"github.com/neovim/go-client/nvim"
)

var errNoVim = errors.New("not attached to a neovim instance")

func newBuffer(vim *nvim.Nvim, buffer nvim.Buffer) *Buffer {
	return &Buffer{
		buffer: buffer,
		vim:    vim,
	}
}

// Buffer replaces the contents of a vim buffer on every write, even when the
// buffer is not modifiable.
type Buffer struct {
	buffer nvim.Buffer
	vim    *nvim.Nvim
}

func splitLines(p []byte) [][]byte {
	scanner := bufio.NewScanner(bytes.NewReader(p))
	scanner.Buffer(make([]byte, 0, 64*1024), len(p)+1)

	lines := [][]byte{}
	for scanner.Scan() {
		lines = append(lines, []byte(scanner.Text()))
	}
	return lines
}

func (b *Buffer) Write(p []byte) (int, error) {
	if b.vim == nil {
		return 0, errNoVim
	}

	lines := splitLines(p)

	const modifiableOptionName = "modifiable"

	// is the buffer modifiable
	isModifiable := false
	err := b.vim.BufferOption(b.buffer, modifiableOptionName, &isModifiable)
	if err != nil {
		return 0, err
	}

	if !isModifiable {
		err = b.vim.SetBufferOption(b.buffer, modifiableOptionName, true)
		if err != nil {
			return 0, err
		}
	}

	err = b.vim.SetBufferLines(b.buffer, 0, -1, true, lines)
	if err != nil {
		return 0, err
	}

	if !isModifiable {
		err = b.vim.SetBufferOption(b.buffer, modifiableOptionName, false)
		if err != nil {
			return 0, err
		}
	}

	return len(p), nil
}
