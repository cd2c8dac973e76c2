package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runner executes external programs. Tests substitute a fake.
type Runner interface {
	// Output runs name in dir and returns its stdout.
	Output(ctx context.Context, dir, name string, args ...string) ([]byte, error)
	// Stream runs name and copies its stdout to w as it is produced.
	Stream(ctx context.Context, w io.Writer, name string, args ...string) error
}

// Exec is the os/exec backed Runner.
type Exec struct{}

var _ Runner = Exec{}

func (Exec) Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, wrap(name, args, err, stderr.Bytes())
	}
	return out, nil
}

func (Exec) Stream(ctx context.Context, w io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = w
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return wrap(name, args, err, stderr.Bytes())
	}
	return nil
}

func wrap(name string, args []string, err error, stderr []byte) error {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return fmt.Errorf("%s: %w: %s", line, err, msg)
		}
	}
	return fmt.Errorf("%s: %w", line, err)
}
