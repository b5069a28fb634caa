package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/veraclabs/anonygo/internal/source/mysqlsource"
)

var sourceCmd = &cobra.Command{
	Use:          "source",
	Short:        "Test a MySQL connection and preview a table's columns",
	SilenceUsage: true,
	Long:         `Connect to a MySQL instance and report the column names and row count of a table, so --qi/--sensitive can be chosen before running an anonymization model.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tableName, _ := cmd.Flags().GetString("table")
		if tableName == "" {
			return fmt.Errorf("--table is required")
		}

		connCfg := mysqlsource.ConnectionConfig{
			Host:     viper.GetString("host"),
			Port:     viper.GetInt("port"),
			User:     viper.GetString("user"),
			Password: viper.GetString("password"),
			Database: viper.GetString("database"),
			Socket:   viper.GetString("socket"),
		}
		if connCfg.Host == "" && connCfg.Socket == "" {
			connCfg.Host = "127.0.0.1"
		}
		if connCfg.User == "" {
			connCfg.User = "anonygo"
		}
		if connCfg.Password == "" {
			connCfg.Password = mysqlsource.PromptPassword()
		}

		db, err := mysqlsource.Connect(connCfg)
		if err != nil {
			return fmt.Errorf("connection failed: %w", err)
		}
		defer db.Close()

		t, err := mysqlsource.LoadTable(context.Background(), db, connCfg.Database, tableName)
		if err != nil {
			return fmt.Errorf("loading table failed: %w", err)
		}

		fmt.Printf("Connected to %s.%s\n\n", connCfg.Database, tableName)
		fmt.Printf("Columns (%d):\n", len(t.Columns))
		for _, col := range t.Columns {
			fmt.Printf("  - %s\n", col)
		}
		fmt.Printf("\nRows: %d\n", len(t.Records))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourceCmd)
	sourceCmd.Flags().String("table", "", "table to preview")
}
