// Package publish commits regenerated dataset files and pushes them to the
// remote repository the deployment platform watches.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Executor runs an external command in a directory and returns its stdout.
type Executor interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecExecutor implements Executor using os/exec.
type ExecExecutor struct {
	env []string
}

// NewExecExecutor creates an executor that inherits the process environment.
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{env: os.Environ()}
}

// Run executes the command and waits for completion. On failure the error
// carries the command's stderr.
func (e *ExecExecutor) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	log.Debug().
		Str("cmd", name).
		Strs("args", args).
		Str("dir", dir).
		Msg("Executing command")

	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	c.Env = e.env

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		return stdout.Bytes(), fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
