package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"agentcanvas/internal/api"
)

func TestSetVersion(t *testing.T) {
	testVersion := "1.2.3-test"
	SetVersion(testVersion)

	if rootCmd.Version != testVersion {
		t.Errorf("Expected version to be %s, got %s", testVersion, rootCmd.Version)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", api.NewAgentNotFoundError("x.yaml"), ExitCodeNotFound},
		{"cycle", api.NewCycleDetectedError([]string{"a.yaml"}), ExitCodeValidationFailed},
		{"execute refused", &api.ExecuteRefusedError{MissingRoot: true}, ExitCodeValidationFailed},
		{"generic", errors.New("boom"), ExitCodeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getExitCode(tt.err); got != tt.want {
				t.Errorf("getExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// runCommand executes the root command with args and returns its output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestCreateListValidateFlow(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")

	out, err := runCommand(t, "create", dir)
	if err != nil {
		t.Fatalf("create project failed: %v", err)
	}
	if !strings.Contains(out, "Created project") {
		t.Errorf("unexpected create output: %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "__init__.py")); err != nil {
		t.Errorf("bridge file missing: %v", err)
	}

	out, err = runCommand(t, "create", dir, "copy agent", "--class", "LlmAgent")
	if err != nil {
		t.Fatalf("create agent failed: %v", err)
	}
	if !strings.Contains(out, "copy_agent.yaml") {
		t.Errorf("unexpected create output: %q", out)
	}

	out, err = runCommand(t, "list", dir)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "root_agent.yaml") || !strings.Contains(out, "copy_agent.yaml") {
		t.Errorf("list output missing files: %q", out)
	}

	out, err = runCommand(t, "validate", dir)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "executable") {
		t.Errorf("unexpected validate output: %q", out)
	}
}

func TestValidateReportsBrokenReferences(t *testing.T) {
	dir := t.TempDir()
	broken := "name: root_agent\nagent_class: LlmAgent\nmodel: gemini-2.0-flash\nsub_agents:\n    - config_path: missing.yaml\n"
	if err := os.WriteFile(filepath.Join(dir, "root_agent.yaml"), []byte(broken), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := runCommand(t, "validate", dir)
	if err == nil {
		t.Fatal("expected validate to fail")
	}
	if getExitCode(err) != ExitCodeValidationFailed {
		t.Errorf("expected exit code %d, got %d", ExitCodeValidationFailed, getExitCode(err))
	}
	if !strings.Contains(out, "missing.yaml") {
		t.Errorf("table output missing broken target: %q", out)
	}
}

func TestListMissingDirectoryIsNotFound(t *testing.T) {
	_, err := runCommand(t, "list", filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected list to fail")
	}
	if getExitCode(err) != ExitCodeNotFound {
		t.Errorf("expected exit code %d, got %d", ExitCodeNotFound, getExitCode(err))
	}
}

func TestCreateAgentUnknownClass(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "demo")
	if _, err := runCommand(t, "create", dir); err != nil {
		t.Fatal(err)
	}

	_, err := runCommand(t, "create", dir, "router", "--class", "RouterAgent")
	if err == nil {
		t.Fatal("expected unknown class to fail")
	}
}
