package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"expenses/internal/backend"
	"expenses/internal/cli"
	"expenses/internal/config"
	"expenses/internal/console"
	"expenses/internal/log"
	"expenses/internal/services"
	"expenses/internal/session"
)

var (
	debugFlag   bool
	backendFlag string

	// Set by PersistentPreRunE, released by PersistentPostRunE.
	sess    *session.Session
	cleanup backend.CleanupFunc
	logger  *log.Logger
)

var rootCmd = &cobra.Command{
	Use:           "expenses",
	Short:         "Record store receipts into a spreadsheet",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return connect(cmd)
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if cleanup != nil {
			return cleanup()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return sess.Run(cmd.Context())
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Enter a new receipt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := sess.AddReceipt(cmd.Context())
		return err
	},
}

var sortCmd = &cobra.Command{
	Use:       "sort (date|cost)",
	Short:     "Sort all receipts by date or total cost",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{services.SortByDate, services.SortByCost},
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == services.SortByCost {
			return sess.SortByCost(cmd.Context())
		}
		return sess.SortByDate(cmd.Context())
	},
}

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Print all receipts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return sess.PrintReceipts(cmd.Context())
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print connection information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return sess.PrintConnectionInfo(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "write to the debug worksheet")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "data backend: "+fmt.Sprint(backend.GetBackendTypeStrings())+" (overrides DATA_BACKEND)")
	rootCmd.AddCommand(addCmd, sortCmd, printCmd, infoCmd)
}

// connect loads configuration, opens the backend and builds the session.
func connect(cmd *cobra.Command) error {
	cli.LoadEnvFile()
	logger = cli.SetupLogger(log.ComponentApp, slog.LevelWarn)

	cfg, err := cli.LoadAndValidateConfig(logger, func(c *config.Config) {
		c.Debug = debugFlag
		if backendFlag != "" {
			c.DataBackend = backendFlag
		}
	})
	if err != nil {
		return err
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Connecting to %s backend...\n", bcfg.Type)
	res, err := backend.NewFactory(logger).CreateBackend(cmd.Context(), bcfg)
	if err != nil {
		return err
	}
	cleanup = res.Cleanup

	ledger := services.NewLedgerService(res.Backend, logger)
	if info, err := ledger.Info(cmd.Context()); err == nil {
		fmt.Fprintf(out, "Connected successfully to worksheet %q!\n", info.Worksheet)
	}

	prompter := console.NewPrompter(cmd.InOrStdin(), out)
	sess = session.New(ledger, prompter, logger)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
