package cmd

import (
	"calculator-brain/internal/keypad"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var keypadLogFile string

var keypadCmd = &cobra.Command{
	Use:   "keypad",
	Short: "Start the interactive terminal keypad",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := keypad.DefaultConfig()
		cfg.NumberFormat = numberFormat()

		if keypadLogFile != "" {
			zcfg := zap.NewDevelopmentConfig()
			zcfg.OutputPaths = []string{keypadLogFile}
			zcfg.ErrorOutputPaths = []string{keypadLogFile}
			if !verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
			}

			logger, err := zcfg.Build()
			if err != nil {
				return err
			}
			defer logger.Sync()
			cfg.Logger = logger
		}

		p := tea.NewProgram(keypad.New(cfg), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	keypadCmd.Flags().StringVar(&keypadLogFile, "log-file", "", "write keypad logs to this file")
	rootCmd.AddCommand(keypadCmd)
}
