// Package document turns the text the user hands readaloud (a file, stdin or
// the clipboard) into plain text suitable for speaking.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/mitchellh/go-homedir"
)

// MaxSize is the largest input accepted, in bytes.
const MaxSize = 1 << 20

var (
	ErrTooLarge  = errors.New("input is too large")
	ErrNotText   = errors.New("input is not UTF-8 text")
	ErrNoContent = errors.New("input is empty")
)

var markdownExtensions = []string{
	".md", ".mdown", ".mkdn", ".mkd", ".markdown",
}

// IsMarkdown reports whether path has a markdown extension.
func IsMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range markdownExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ReadFile loads path. Markdown files are flattened to plain text.
func ReadFile(path string, opts Options) (string, error) {
	p, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close() //nolint:errcheck

	b, err := readAll(f)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	if IsMarkdown(p) {
		return Plain(b, opts), nil
	}
	return normalize(string(b)), nil
}

// Read loads r (usually stdin). Input is treated as markdown when markdown
// is set.
func Read(r io.Reader, markdown bool, opts Options) (string, error) {
	b, err := readAll(r)
	if err != nil {
		return "", err
	}
	if markdown {
		return Plain(b, opts), nil
	}
	return normalize(string(b)), nil
}

// FromClipboard returns the clipboard contents.
func FromClipboard() (string, error) {
	if clipboard.Unsupported {
		return "", errors.New("clipboard is not supported on this system")
	}
	s, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("unable to read clipboard: %w", err)
	}
	if len(s) > MaxSize {
		return "", ErrTooLarge
	}
	if strings.TrimSpace(s) == "" {
		return "", ErrNoContent
	}
	return normalize(s), nil
}

func readAll(r io.Reader) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, err
	}
	if len(b) > MaxSize {
		return nil, ErrTooLarge
	}
	if !utf8.Valid(b) {
		return nil, ErrNotText
	}
	b = bytes.TrimPrefix(b, []byte("\ufeff"))
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, ErrNoContent
	}
	return b, nil
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimSpace(s)
}
