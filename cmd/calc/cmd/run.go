package cmd

import (
	"calculator-brain/internal/engine"
	"calculator-brain/internal/program"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run <program.yaml>",
	Short: "Evaluate a YAML program file",
	Long: `run loads a program file of the form

  variables:
    M: 3
  program: [4, "+", M, "="]

binds its variables and applies its tokens in order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		file, err := program.Load(args[0])
		if err != nil {
			return err
		}
		logger.Debug("program loaded",
			zap.String("path", args[0]),
			zap.Int("tokens", len(file.Program)),
			zap.Int("variables", len(file.Variables)),
		)

		f := numberFormat()
		e := engine.New(engine.WithNumberFormat(f), engine.WithVariables(file.Variables))
		if err := runTokens(e, file.Program, logger); err != nil {
			return err
		}

		printState(cmd.OutOrStdout(), e, f)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
