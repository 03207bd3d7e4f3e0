// Package main provides tests for the macropp CLI.
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/leapstack-labs/macropp/internal/cli"
	"github.com/leapstack-labs/macropp/internal/cli/config"
	"github.com/leapstack-labs/macropp/internal/cli/testutil"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(out, "macropp v") {
		t.Errorf("version output should contain 'macropp v', got: %s", out)
	}
}

func TestHelpCommand(t *testing.T) {
	out, _, err := run(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	expectedCommands := []string{"expand", "defs", "repl", "version", "completion"}
	for _, expected := range expectedCommands {
		if !strings.Contains(out, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, out)
		}
	}
}

func TestExpandCommand(t *testing.T) {
	t.Chdir(testutil.SetupTestProject(t))

	_, stderr, err := run(t, "expand", "input.txt")
	if err != nil {
		t.Fatalf("expand command error = %v (stderr: %s)", err, stderr)
	}

	got, err := os.ReadFile("input_processed.txt")
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	want := "Hello, World!\nBody text.\n-- Team\n"
	if string(got) != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	logged, err := os.ReadFile("error_log.txt")
	if err != nil {
		t.Fatalf("failed to read error log: %v", err)
	}
	if len(logged) != 0 {
		t.Errorf("error log should be empty, got: %s", logged)
	}
}

func TestExpandCommand_Strict(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)
	if err := os.WriteFile("broken.txt", []byte("#MCALL nowhere\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, _, err := run(t, "expand", "broken.txt", "-o", "-"); err != nil {
		t.Errorf("non-strict run should succeed, got: %v", err)
	}

	_, _, err := run(t, "expand", "broken.txt", "-o", "-", "--strict")
	if err == nil {
		t.Fatal("strict run should fail when diagnostics are reported")
	}
	if !strings.Contains(err.Error(), "diagnostics reported") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDefsCommand_JSON(t *testing.T) {
	t.Chdir(testutil.SetupTestProject(t))

	out, stderr, err := run(t, "defs", "input.txt", "--format", "json")
	if err != nil {
		t.Fatalf("defs command error = %v (stderr: %s)", err, stderr)
	}

	var result struct {
		Total  int `json:"total"`
		Macros []struct {
			Name string `json:"name"`
		} `json:"macros"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if result.Total != 2 {
		t.Errorf("total = %d, want 2", result.Total)
	}
}

func TestInvalidConfig(t *testing.T) {
	dir := testutil.SetupTestProject(t)
	t.Chdir(dir)

	_, _, err := run(t, "defs", "--max-depth", "0")
	if err == nil {
		t.Fatal("expected an error for max-depth 0")
	}
	if !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("unexpected error: %v", err)
	}
}
