package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPlain(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     Options
		expected string
	}{
		{
			name:     "plain paragraph",
			input:    "Hello world.",
			expected: "Hello world.",
		},
		{
			name:     "heading gets a full stop",
			input:    "# Getting Started\n\nInstall the tool.",
			expected: "Getting Started.\n\nInstall the tool.",
		},
		{
			name:     "heading punctuation kept",
			input:    "## Why?\n\nBecause.",
			expected: "Why?\n\nBecause.",
		},
		{
			name:     "emphasis and links",
			input:    "This is **bold**, *italic* and a [link](https://example.com).",
			expected: "This is bold, italic and a link.",
		},
		{
			name:     "soft line breaks joined",
			input:    "First line\nsecond line",
			expected: "First line second line",
		},
		{
			name:     "lists",
			input:    "- one\n- two\n- three",
			expected: "one\n\ntwo\n\nthree",
		},
		{
			name:     "code dropped by default",
			input:    "Run this:\n\n```sh\nmake install\n```\n\nDone.",
			expected: "Run this:\n\nDone.",
		},
		{
			name:     "code kept on request",
			input:    "Run this:\n\n```sh\nmake install\n```",
			opts:     Options{IncludeCode: true},
			expected: "Run this:\n\nmake install",
		},
		{
			name:     "inline code kept",
			input:    "Call `speak` now.",
			expected: "Call speak now.",
		},
		{
			name:     "image alt text",
			input:    "![A cat](cat.png)",
			expected: "A cat",
		},
		{
			name:     "html and autolinks dropped",
			input:    "<div>hidden</div>\n\nSee <https://example.com> later.",
			expected: "See later.",
		},
		{
			name:     "blockquote",
			input:    "> Be kind.",
			expected: "Be kind.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plain([]byte(tt.input), tt.opts)
			if got != tt.expected {
				t.Errorf("Plain() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestIsMarkdown(t *testing.T) {
	tests := map[string]bool{
		"README.md":       true,
		"notes.MARKDOWN":  true,
		"doc.mkd":         true,
		"story.txt":       false,
		"Makefile":        false,
		"dir.md/file.txt": false,
	}
	for path, want := range tests {
		if got := IsMarkdown(path); got != want {
			t.Errorf("IsMarkdown(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	mdPath := filepath.Join(dir, "doc.md")
	txtPath := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(mdPath, []byte("# Title\n\n*Hello*"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(txtPath, []byte("\ufeff# Not markdown\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := ReadFile(mdPath, Options{})
	if err != nil || got != "Title.\n\nHello" {
		t.Errorf("ReadFile(md) = %q, %v", got, err)
	}

	got, err = ReadFile(txtPath, Options{})
	if err != nil || got != "# Not markdown" {
		t.Errorf("ReadFile(txt) = %q, %v", got, err)
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.md"), Options{}); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestRead(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		markdown bool
		want     string
		wantErr  error
	}{
		{"text", "  Hello there  \n", false, "Hello there", nil},
		{"markdown", "**Hi**", true, "Hi", nil},
		{"empty", " \n\t", false, "", ErrNoContent},
		{"binary", "\xff\xfe\x00", false, "", ErrNotText},
		{"too large", strings.Repeat("a", MaxSize+1), false, "", ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.input), tt.markdown, Options{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Read() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Read() = %q, want %q", got, tt.want)
			}
		})
	}
}
