package scripts

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestExecRunner(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	r := NewExecRunner(quietLogger(), []string{"GREETING=hello"})

	out, err := r.Run(context.Background(), "sh", "-c", "echo $GREETING")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.TrimSpace(string(out)) != "hello" {
		t.Errorf("unexpected output %q", out)
	}

	_, err = r.Run(context.Background(), "sh", "-c", "echo 'ERROR: boom' >&2; exit 3")
	var scriptErr *ScriptError
	if !errors.As(err, &scriptErr) {
		t.Fatalf("expected ScriptError, got %v", err)
	}
	if scriptErr.Detail() != "ERROR: boom" {
		t.Errorf("unexpected detail %q", scriptErr.Detail())
	}
}
