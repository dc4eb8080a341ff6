package execx

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"
)

func TestOSRunner_Run(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	var stdout, stderr bytes.Buffer
	r := NewOSRunner(&stdout, &stderr)
	if err := r.Run(context.Background(), t.TempDir(), "sh", "-c", "echo out; echo warn >&2"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != "out" {
		t.Fatalf("stdout=%q", stdout.String())
	}
	if strings.TrimSpace(stderr.String()) != "warn" {
		t.Fatalf("stderr=%q", stderr.String())
	}
}

func TestOSRunner_FailureIncludesStderr(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	r := NewOSRunner(&bytes.Buffer{}, &bytes.Buffer{})
	err := r.Run(context.Background(), "", "sh", "-c", "echo boom >&2; exit 3")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err=%v", err)
	}
}
