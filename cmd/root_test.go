package cmd

import "testing"

func TestRootCommand_Structure(t *testing.T) {
	if rootCmd.Use != "anonygo" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "anonygo")
	}
	if rootCmd.Short == "" {
		t.Error("rootCmd.Short should not be empty")
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{"host", "port", "user", "password", "database", "socket", "format", "verbose", "config"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected persistent flag %q to be registered", name)
		}
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	want := map[string]bool{"run": false, "source": false, "version": false, "config": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("expected %q subcommand to be registered on root", name)
		}
	}
}

func TestRootCommand_DefaultFormat(t *testing.T) {
	f := rootCmd.PersistentFlags().Lookup("format")
	if f == nil {
		t.Fatal("format flag not registered")
	}
	if f.DefValue != "text" {
		t.Errorf("format default = %q, want %q", f.DefValue, "text")
	}
}
