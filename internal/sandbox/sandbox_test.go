package sandbox

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func requirePython(t *testing.T) *PythonRunner {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not installed")
	}
	return &PythonRunner{Interpreter: "python3", Timeout: DefaultTimeout}
}

func TestRun_CapturesStdout(t *testing.T) {
	r := requirePython(t)
	res, err := r.Run(context.Background(), "for i in range(3):\n    print(i)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Stdout != "0\n1\n2\n" {
		t.Errorf("stdout = %q", res.Stdout)
	}
	if res.Stderr != "" || res.ExitCode != 0 || res.TimedOut {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestRun_CapturesErrors(t *testing.T) {
	r := requirePython(t)
	res, err := r.Run(context.Background(), "print('before')\n1 / 0")
	if err != nil {
		t.Fatalf("a failing snippet is not a runner error: %v", err)
	}
	if res.Stdout != "before\n" {
		t.Errorf("stdout = %q", res.Stdout)
	}
	if !strings.Contains(res.Stderr, "ZeroDivisionError") {
		t.Errorf("stderr = %q", res.Stderr)
	}
	if res.ExitCode == 0 {
		t.Error("expected non-zero exit code")
	}
}

func TestRun_Timeout(t *testing.T) {
	r := requirePython(t)
	r.Timeout = 200 * time.Millisecond

	start := time.Now()
	res, err := r.Run(context.Background(), "while True:\n    pass")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.TimedOut || res.Stderr != TimeoutMessage {
		t.Errorf("unexpected result %+v", res)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("run took %v, should stop near the timeout", elapsed)
	}
}

func TestRun_CallerCancellation(t *testing.T) {
	r := requirePython(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, "print('never')")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRun_MissingInterpreter(t *testing.T) {
	r := &PythonRunner{Interpreter: "pytutor-no-such-python"}
	_, err := r.Run(context.Background(), "print(1)")
	if err == nil {
		t.Fatal("expected an error for a missing interpreter")
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("expected exec.ErrNotFound, got %v", err)
	}
}

func TestNewPythonRunner(t *testing.T) {
	t.Setenv("PYTUTOR_PYTHON", "/opt/python/bin/python3.12")
	r := NewPythonRunner()
	if r.Interpreter != "/opt/python/bin/python3.12" || r.Timeout != DefaultTimeout {
		t.Errorf("unexpected runner %+v", r)
	}

	t.Setenv("PYTUTOR_PYTHON", "")
	if r := NewPythonRunner(); r.Interpreter != "python3" {
		t.Errorf("default interpreter = %q", r.Interpreter)
	}
}
