package cmd

import (
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print anonygo's version and supported privacy models",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("anonygo %s (commit: %s, built: %s)\n\n", Version, CommitSHA, BuildDate)
		cmd.Println("Supported privacy models:")
		cmd.Println("  • k-anonymity")
		cmd.Println("  • (alpha,k)-anonymity")
		cmd.Println("  • l-diversity (plain, entropy, recursive (c,l))")
		cmd.Println("  • t-closeness")
		cmd.Println("  • beta-likeness (basic, enhanced)")
		cmd.Println("  • delta-disclosure")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
