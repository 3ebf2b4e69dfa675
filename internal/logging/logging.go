// Package logging builds the application logger. The TUI owns the terminal,
// so log lines go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logger writing to path at the named level. An empty
// path discards output. The returned closer releases the file.
func New(path, level string) (*logrus.Logger, io.Closer, error) {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}
	l.SetLevel(lvl)

	if path == "" {
		l.SetOutput(io.Discard)
		return l, io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("logging: create dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: open %s: %w", path, err)
	}
	l.SetOutput(f)
	return l, f, nil
}
