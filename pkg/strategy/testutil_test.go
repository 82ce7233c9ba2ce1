package strategy

import (
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/srcforge/srcforge/pkg/run"
)

// chdir changes into dir for the duration of the test, restoring the
// previous working directory on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getting working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("changing directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

// requireTool skips the test if the named tool is not available.
func requireTool(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not found in PATH", name)
	}
}

// newTestRunner returns a non-verbose runner with output discarded.
func newTestRunner() *run.Runner {
	return run.New(false, run.WithOutput(io.Discard, io.Discard))
}

// fakeTool installs a shell script named name on PATH that appends its argv
// to a log file before running extra shell code, so tests can assert the
// exact command shapes without the real backend installed. Returns the log
// file path.
func fakeTool(t *testing.T, name, extra string) string {
	t.Helper()

	binDir := t.TempDir()
	logFile := filepath.Join(binDir, name+".log")
	script := "#!/bin/sh\necho \"$@\" >> " + logFile + "\n" + extra + "\n"
	if err := os.WriteFile(filepath.Join(binDir, name), []byte(script), 0o755); err != nil {
		t.Fatalf("writing fake %s: %v", name, err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return logFile
}

func loggedArgs(t *testing.T, logFile string) []string {
	t.Helper()
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading tool log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}
