package cmd

import "testing"

func TestSourceCommand_Structure(t *testing.T) {
	if sourceCmd.Use != "source" {
		t.Errorf("sourceCmd.Use = %q, want %q", sourceCmd.Use, "source")
	}
	if sourceCmd.Flags().Lookup("table") == nil {
		t.Error("expected --table flag to be registered on source")
	}
}

func TestSourceCommand_RequiresTableFlag(t *testing.T) {
	sourceCmd.Flags().Set("table", "")
	err := sourceCmd.RunE(sourceCmd, nil)
	if err == nil {
		t.Error("expected an error when --table is not set")
	}
}
