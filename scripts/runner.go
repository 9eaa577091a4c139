package scripts

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"
)

// Runner executes an external program and returns its stdout.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs programs through os/exec.
type ExecRunner struct {
	logger *logrus.Logger
	env    []string
}

func NewExecRunner(logger *logrus.Logger, env []string) *ExecRunner {
	return &ExecRunner{logger: logger, env: env}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	const op = "ExecRunner.Run"

	r.logger.WithFields(logrus.Fields{
		"command": name,
		"args":    args,
	}).Debug("Executing command")

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), r.env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"command": name,
			"stderr":  stderr.String(),
		}).Error("Command execution failed")

		scriptErr := newScriptError(op, err, "command execution failed")
		scriptErr.Stderr = stderr.String()
		if ctx.Err() != nil {
			scriptErr.Err = ctx.Err()
		}
		return nil, scriptErr
	}

	return stdout.Bytes(), nil
}
