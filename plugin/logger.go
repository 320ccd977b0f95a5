package plugin

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/neovim/go-client/nvim"
)

// Logger writes to stdpath("cache")/dbedit/dbedit.log. The file is opened on
// the first message, before that and on failure it logs to stdout.
type Logger struct {
	vim          *nvim.Nvim
	logger       *log.Logger
	file         *os.File
	triedFileSet bool
	debug        bool
	mu           sync.Mutex
}

func NewLogger(vim *nvim.Nvim) *Logger {
	return &Logger{
		vim:          vim,
		logger:       log.New(os.Stdout, "", log.Ldate|log.Ltime),
		triedFileSet: false,
		debug:        os.Getenv("DBEDIT_DEBUG") != "",
	}
}

func (l *Logger) setupFile() error {
	if l.vim == nil {
		return errors.New("no neovim instance to ask for the cache dir")
	}

	var dir string
	err := l.vim.Call("stdpath", &dir, "cache")
	if err != nil {
		return err
	}
	dir = filepath.Join(dir, "dbedit")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	file, err := os.OpenFile(filepath.Join(dir, "dbedit.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o666)
	if err != nil {
		return err
	}

	l.file = file
	l.logger.SetOutput(file)
	return nil
}

func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
}

func (l *Logger) log(level, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil && !l.triedFileSet {
		err := l.setupFile()
		if err != nil {
			l.logger.Print(err)
		}
		l.triedFileSet = true
	}

	l.logger.Printf("[%s]: %s", level, message)
}

// Debugf only logs when DBEDIT_DEBUG is set.
func (l *Logger) Debugf(format string, args ...any) {
	if !l.debug {
		return
	}
	l.log("debug", fmt.Sprintf(format, args...))
}

func (l *Logger) Infof(format string, args ...any) {
	l.log("info", fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.log("warn", fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.log("error", fmt.Sprintf(format, args...))
}
