package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/veraclabs/anonygo/internal/engine"
	"github.com/veraclabs/anonygo/internal/hierarchy"
	"github.com/veraclabs/anonygo/internal/output"
	"github.com/veraclabs/anonygo/internal/source/csvsource"
	"github.com/veraclabs/anonygo/internal/source/mysqlsource"
	"github.com/veraclabs/anonygo/internal/table"
)

var runCmd = &cobra.Command{
	Use:          "run [model]",
	Short:        "Anonymize a table under one privacy model",
	SilenceUsage: true,
	Long: `Anonymize a table (read from --input CSV or, with --table, a live MySQL
query) under one privacy model:

  k             k-anonymity            --k
  alpha-k       (alpha,k)-anonymity     --k --alpha
  l             l-diversity             --k --l
  entropy-l     entropy l-diversity     --k --l
  recursive-cl  recursive (c,l)-diversity --k --l --c
  t-closeness   t-closeness             --k --t
  basic-beta    basic beta-likeness     --k --beta
  enhanced-beta enhanced beta-likeness  --k --beta --p0
  delta         delta-disclosure        --k --delta`,
	Args: cobra.ExactArgs(1),
	RunE: runAnonymize,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("input", "", "CSV file to anonymize")
	runCmd.Flags().String("table", "", "MySQL table to anonymize (SELECT * FROM this table)")
	runCmd.Flags().String("query", "", "MySQL query to anonymize instead of --table")
	runCmd.Flags().String("output", "", "write the anonymized table as CSV to this path")

	runCmd.Flags().StringSlice("qi", nil, "quasi-identifier columns (comma-separated)")
	runCmd.Flags().StringSlice("identifiers", nil, "direct identifier columns to suppress (comma-separated)")
	runCmd.Flags().String("sensitive", "", "sensitive attribute column")
	runCmd.Flags().String("hierarchy-dir", "", "directory of <column>.csv generalization hierarchies")
	runCmd.Flags().Float64("supp-level", 0, "maximum suppression percentage allowed (0-100)")

	runCmd.Flags().Int("k", 0, "k parameter (minimum equivalence class size)")
	runCmd.Flags().Int("l", 0, "l parameter (l-diversity family)")
	runCmd.Flags().Int("c", 0, "c parameter (recursive (c,l)-diversity)")
	runCmd.Flags().Float64("alpha", 0, "alpha parameter ((alpha,k)-anonymity)")
	runCmd.Flags().Float64("t", 0, "t parameter (t-closeness)")
	runCmd.Flags().Float64("beta", 0, "beta parameter (beta-likeness)")
	runCmd.Flags().Float64("p0", 0, "p0 floor (enhanced beta-likeness)")
	runCmd.Flags().Float64("delta", 0, "delta parameter (delta-disclosure)")
}

func runAnonymize(cmd *cobra.Command, args []string) error {
	model := args[0]

	data, err := loadInputTable(cmd)
	if err != nil {
		return err
	}

	qis, _ := cmd.Flags().GetStringSlice("qi")
	if len(qis) == 0 {
		return fmt.Errorf("--qi is required")
	}
	identifiers, _ := cmd.Flags().GetStringSlice("identifiers")
	sensitive, _ := cmd.Flags().GetString("sensitive")
	suppLevel, _ := cmd.Flags().GetFloat64("supp-level")
	if !cmd.Flags().Changed("supp-level") && viper.IsSet("defaults.suppression_level") {
		suppLevel = viper.GetFloat64("defaults.suppression_level")
	}
	hierDir, _ := cmd.Flags().GetString("hierarchy-dir")
	if hierDir == "" {
		hierDir = viper.GetString("defaults.hierarchy_dir")
	}

	store, err := loadHierarchies(hierDir, qis)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	var logger engineLogger
	if verbose {
		logger = engineLogger{enabled: true}
	}

	base := engine.Params{
		Identifiers:        identifiers,
		QuasiIdentifiers:   qis,
		SensitiveAttribute: sensitive,
		SuppLevel:          suppLevel,
		Hierarchies:        store,
		Logger:             logger,
	}

	k, _ := cmd.Flags().GetInt("k")
	l, _ := cmd.Flags().GetInt("l")
	c, _ := cmd.Flags().GetInt("c")
	alpha, _ := cmd.Flags().GetFloat64("alpha")
	tBound, _ := cmd.Flags().GetFloat64("t")
	beta, _ := cmd.Flags().GetFloat64("beta")
	p0, _ := cmd.Flags().GetFloat64("p0")
	delta, _ := cmd.Flags().GetFloat64("delta")

	var (
		result    *engine.Result
		modelName string
		params    []output.ParamValue
	)

	switch model {
	case "k":
		modelName = "k-anonymity"
		params = []output.ParamValue{{Label: "k", Value: fmt.Sprint(k)}}
		result, err = engine.KAnonymity(data, engine.KRequest{Params: base, K: k})
	case "alpha-k":
		modelName = "(alpha,k)-anonymity"
		params = []output.ParamValue{{Label: "k", Value: fmt.Sprint(k)}, {Label: "alpha", Value: fmt.Sprint(alpha)}}
		result, err = engine.AlphaKAnonymity(data, engine.AlphaKRequest{Params: base, K: k, Alpha: alpha})
	case "l":
		modelName = "l-diversity"
		params = []output.ParamValue{{Label: "k", Value: fmt.Sprint(k)}, {Label: "l", Value: fmt.Sprint(l)}}
		result, err = engine.LDiversity(data, engine.LDiversityRequest{Params: base, K: k, L: l})
	case "entropy-l":
		modelName = "entropy l-diversity"
		params = []output.ParamValue{{Label: "k", Value: fmt.Sprint(k)}, {Label: "l", Value: fmt.Sprint(l)}}
		result, err = engine.EntropyLDiversity(data, engine.EntropyLRequest{Params: base, K: k, L: l})
	case "recursive-cl":
		modelName = "recursive (c,l)-diversity"
		params = []output.ParamValue{{Label: "k", Value: fmt.Sprint(k)}, {Label: "l", Value: fmt.Sprint(l)}, {Label: "c", Value: fmt.Sprint(c)}}
		result, err = engine.RecursiveCLDiversity(data, engine.RecursiveCLRequest{Params: base, K: k, L: l, C: c})
	case "t-closeness":
		modelName = "t-closeness"
		params = []output.ParamValue{{Label: "k", Value: fmt.Sprint(k)}, {Label: "t", Value: fmt.Sprint(tBound)}}
		result, err = engine.TCloseness(data, engine.TClosenessRequest{Params: base, K: k, T: tBound})
	case "basic-beta":
		modelName = "basic beta-likeness"
		params = []output.ParamValue{{Label: "k", Value: fmt.Sprint(k)}, {Label: "beta", Value: fmt.Sprint(beta)}}
		result, err = engine.BasicBetaLikeness(data, engine.BetaRequest{Params: base, K: k, Beta: beta})
	case "enhanced-beta":
		modelName = "enhanced beta-likeness"
		params = []output.ParamValue{{Label: "k", Value: fmt.Sprint(k)}, {Label: "beta", Value: fmt.Sprint(beta)}, {Label: "p0", Value: fmt.Sprint(p0)}}
		result, err = engine.EnhancedBetaLikeness(data, engine.BetaRequest{Params: base, K: k, Beta: beta, P0: p0})
	case "delta":
		modelName = "delta-disclosure"
		params = []output.ParamValue{{Label: "k", Value: fmt.Sprint(k)}, {Label: "delta", Value: fmt.Sprint(delta)}}
		result, err = engine.DeltaDisclosure(data, engine.DeltaRequest{Params: base, K: k, Delta: delta})
	default:
		return fmt.Errorf("unknown model %q", model)
	}
	if err != nil {
		return err
	}

	format := viper.GetString("format")
	renderer := output.NewRenderer(format, os.Stdout)
	renderer.Render(output.Summary{
		Model:              modelName,
		Params:             params,
		QuasiIdentifiers:   qis,
		SensitiveAttribute: sensitive,
		OriginalRows:       len(data.Records),
		Result:             result,
	})

	if outPath, _ := cmd.Flags().GetString("output"); outPath != "" && result.FinalState == engine.StateDoneOK {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		defer f.Close()
		if err := csvsource.Write(f, result.Table); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}

	return nil
}

func loadInputTable(cmd *cobra.Command) (*table.Table, error) {
	input, _ := cmd.Flags().GetString("input")
	tableName, _ := cmd.Flags().GetString("table")
	query, _ := cmd.Flags().GetString("query")

	if input != "" {
		return csvsource.Load(input)
	}
	if tableName == "" && query == "" {
		return nil, fmt.Errorf("provide --input, --table, or --query")
	}

	connCfg := mysqlsource.ConnectionConfig{
		Host:     viper.GetString("host"),
		Port:     viper.GetInt("port"),
		User:     viper.GetString("user"),
		Password: viper.GetString("password"),
		Database: viper.GetString("database"),
		Socket:   viper.GetString("socket"),
		TLSMode:  viper.GetString("tls"),
		TLSCA:    viper.GetString("tls_ca"),
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
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if query != "" {
		return mysqlsource.LoadQuery(ctx, db, query)
	}
	return mysqlsource.LoadTable(ctx, db, connCfg.Database, tableName)
}

func loadHierarchies(dir string, qis []string) (hierarchy.Store, error) {
	store := make(hierarchy.Store)
	if dir == "" {
		return store, nil
	}
	for _, qi := range qis {
		path := filepath.Join(dir, qi+".csv")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		ladder, err := hierarchy.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading hierarchy for %q: %w", qi, err)
		}
		store[qi] = ladder
	}
	return store, nil
}

// engineLogger adapts cobra's verbose flag to anonerr.Logger, printing
// to stderr so diagnostic trails never pollute piped output formats.
type engineLogger struct{ enabled bool }

func (l engineLogger) Printf(format string, args ...any) {
	if !l.enabled {
		return
	}
	fmt.Fprintf(os.Stderr, strings.TrimSuffix(format, "\n")+"\n", args...)
}
