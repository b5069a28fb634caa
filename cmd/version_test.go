package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit, origDate := Version, CommitSHA, BuildDate
	Version, CommitSHA, BuildDate = "1.2.3", "abc123", "2026-07-31"
	defer func() { Version, CommitSHA, BuildDate = origVersion, origCommit, origDate }()

	output := &bytes.Buffer{}
	versionCmd.SetOut(output)
	versionCmd.SetErr(output)
	versionCmd.Run(versionCmd, []string{})

	result := output.String()
	for _, want := range []string{"1.2.3", "abc123", "2026-07-31", "k-anonymity", "t-closeness"} {
		if !strings.Contains(result, want) {
			t.Errorf("output should contain %q, got: %s", want, result)
		}
	}
}

func TestVersionCommand_Structure(t *testing.T) {
	if versionCmd.Use != "version" {
		t.Errorf("versionCmd.Use = %q, want %q", versionCmd.Use, "version")
	}

	found := false
	for _, c := range rootCmd.Commands() {
		if c.Use == "version" {
			found = true
		}
	}
	if !found {
		t.Error("version command should be registered with root command")
	}
}
