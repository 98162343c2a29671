package cmd

import (
	"fmt"
	"strconv"

	"calculator-brain/internal/engine"
	"calculator-brain/internal/program"

	"github.com/spf13/cobra"
)

var evalVars map[string]string

var evalCmd = &cobra.Command{
	Use:   "eval <token>...",
	Short: "Evaluate tokens given on the command line",
	Example: `  calc eval 4 + 5 =
  calc eval 2 '*' pi =
  calc eval --var M=3 M sqrt
  calc eval -- -3 sq`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		vars, err := parseVars(evalVars)
		if err != nil {
			return err
		}

		f := numberFormat()
		e := engine.New(engine.WithNumberFormat(f), engine.WithVariables(vars))
		if err := runTokens(e, program.ParseTokens(args), logger); err != nil {
			return err
		}

		printState(cmd.OutOrStdout(), e, f)
		return nil
	},
}

func init() {
	evalCmd.Flags().StringToStringVar(&evalVars, "var", nil, "bind a variable, e.g. --var M=3")
	rootCmd.AddCommand(evalCmd)
}

func parseVars(raw map[string]string) (map[string]float64, error) {
	vars := make(map[string]float64, len(raw))
	for name, value := range raw {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
		vars[name] = v
	}
	return vars, nil
}
