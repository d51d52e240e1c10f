package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
)

// waitDelay bounds how long Run waits for output pipes after the process
// group has been killed.
const waitDelay = 500 * time.Millisecond

// Run executes name with args and returns its stdout. The process runs in
// its own process group and the whole group is killed when ctx is done, so
// helpers spawned by speech programs (audio players and the like) stop too.
// A non-nil stdin is connected before the process starts.
func Run(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	log.Debug("subprocess executed", "command", name, "args", len(args), "duration", time.Since(start), "err", err)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s failed: %w: %s", filepath.Base(name), err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", filepath.Base(name), err)
	}
	return stdout.Bytes(), nil
}

// FindBinary locates name in PATH, then in the given fallback locations.
// Fallbacks may start with "~".
func FindBinary(name string, fallbacks ...string) (string, error) {
	if name == "" {
		return "", errors.New("no binary configured")
	}
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}
	for _, p := range fallbacks {
		p, err := homedir.Expand(p)
		if err != nil {
			continue
		}
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("binary %q not found in PATH", name)
}
