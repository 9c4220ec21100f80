package cmd

import (
	"fmt"
	"os"

	"fwdctl/pkg/config"
	"fwdctl/pkg/engine"
	"fwdctl/pkg/logging"
	"fwdctl/pkg/registry"
	"fwdctl/pkg/reporting"
	"fwdctl/pkg/supervisor"

	"github.com/spf13/cobra"
)

var cfgPath string

// rootCmd is the base command; running it bare is equivalent to `start`.
var rootCmd = &cobra.Command{
	Use:   "fwdctl",
	Short: "Supervise socat port-forwarding rules",
	Long: `fwdctl reads a declarative rule file of TCP/UDP port forwards and
supervises one socat process per rule: start, stop, restart and inspect
the whole set. fwdctl never relays bytes itself; the external engine does.`,
	// Usage noise on handled errors helps nobody
	SilenceUsage: true,
	// Anything that is not a known subcommand is an unknown command, not
	// an argument to the default start sweep.
	Args: cobra.NoArgs,
	RunE: runStart,
}

// Execute runs the command surface. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "",
		fmt.Sprintf("config file (default %s)", config.DefaultPath))

	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newStopCmd())
	rootCmd.AddCommand(newRestartCmd())
	rootCmd.AddCommand(newReloadCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newTuiCmd())
}

// setup builds the supervisor and its collaborators from the configuration.
// The returned cleanup closes the registry.
func setup(cmd *cobra.Command) (*supervisor.Supervisor, config.Config, func(), error) {
	return setupWith(cmd, nil)
}

// setupWith lets callers that own the terminal (the TUI) inject their own
// reporter; nil means the console reporter on the command's stdout.
func setupWith(cmd *cobra.Command, reporter reporting.Reporter) (*supervisor.Supervisor, config.Config, func(), error) {
	// Cobra prints returned errors; nothing is reported here directly.
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, config.Config{}, nil, err
	}

	if err := logging.Setup(cfg.LogEnabled, cfg.LogFile); err != nil {
		return nil, config.Config{}, nil, err
	}

	reg, err := registry.OpenSQLite(cfg.StateDir)
	if err != nil {
		return nil, config.Config{}, nil, err
	}

	eng := engine.NewSocatEngine(cfg.EngineBin, cfg.EngineOptions, cfg.EngineLogFile, cfg.PortCheck)
	if reporter == nil {
		reporter = reporting.NewConsoleReporter(cmd.OutOrStdout())
	}
	sup := supervisor.New(cfg, reg, eng, reporter)

	if cfg.AutoRestart {
		logging.Info("auto-restart intent is set; enforcement is left to the external process supervisor")
	}

	cleanup := func() { _ = reg.Close() }
	return sup, cfg, cleanup, nil
}
