package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunReportsExitCode(t *testing.T) {
	r := NewRunner(t.TempDir(), false, testLogger())

	err := r.Run("", "sh", "-c", "exit 3")
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolError, got %v", err)
	}
	if toolErr.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %d", toolErr.ExitCode)
	}
}

func TestRunDefaultsToWorkdir(t *testing.T) {
	workdir := t.TempDir()
	r := NewRunner(workdir, false, testLogger())

	if err := r.Run("", "sh", "-c", "touch marker"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(workdir, "marker")); err != nil {
		t.Fatalf("expected marker in workdir: %v", err)
	}
}

func TestRunHonorsExplicitDir(t *testing.T) {
	workdir := t.TempDir()
	other := t.TempDir()
	r := NewRunner(workdir, false, testLogger())

	if err := r.Run(other, "sh", "-c", "touch marker"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(other, "marker")); err != nil {
		t.Fatalf("expected marker in explicit dir: %v", err)
	}
}

func TestOutputReturnsFirstLineTrimmed(t *testing.T) {
	r := NewRunner(t.TempDir(), false, testLogger())

	line, err := r.Output("", "sh", "-c", "echo '  abcdef1 fix the frobnicator  '; echo ignored")
	if err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	if line != "abcdef1 fix the frobnicator" {
		t.Fatalf("unexpected line %q", line)
	}
}

func TestOutputCapsRunawayFirstLine(t *testing.T) {
	r := NewRunner(t.TempDir(), false, testLogger())

	line, err := r.Output("", "sh", "-c", "head -c 100000 /dev/zero | tr '\\0' 'a'; echo")
	if err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	if len(line) != outputLineLimit {
		t.Fatalf("expected capture capped at %d bytes, got %d", outputLineLimit, len(line))
	}
	if line != strings.Repeat("a", outputLineLimit) {
		t.Fatalf("unexpected capture prefix %q", line[:16])
	}
}

func TestOutputFailsOnNonzeroExit(t *testing.T) {
	r := NewRunner(t.TempDir(), false, testLogger())

	_, err := r.Output("", "sh", "-c", "echo partial; exit 1")
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected ToolError, got %v", err)
	}
}

func TestRunMissingBinaryIsNotAToolError(t *testing.T) {
	r := NewRunner(t.TempDir(), false, testLogger())

	err := r.Run("", "definitely-not-a-real-tool-xyz")
	if err == nil {
		t.Fatalf("expected error for missing binary")
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		t.Fatalf("missing binary should not map to ToolError: %v", err)
	}
}
