// Package cli implements the walletcore command-line interface.
//
// This package provides two ways to access CLI state:
//  1. Global variables (legacy) - kept for simple command bodies
//  2. Context-based access - via GetCmdContext(cmd)
//
// The globals are initialized in PersistentPreRunE and cleaned up in
// PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nimbuswallet/core/internal/config"
	"github.com/nimbuswallet/core/internal/electrum"
	"github.com/nimbuswallet/core/internal/output"
	"github.com/nimbuswallet/core/internal/secretstore"
	"github.com/nimbuswallet/core/internal/walletrepo"
	walleterr "github.com/nimbuswallet/core/pkg/errors"
	"github.com/nimbuswallet/core/usecases"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
	repo      *walletrepo.Repository
	client    *electrum.Client
	svc       *usecases.Service

	// cmdCtx is the command context handed out via GetCmdContext.
	cmdCtx *CommandContext

	// electrumCancel stops the background Run loop started in initGlobals.
	electrumCancel context.CancelFunc
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "walletcore",
	Short: "A non-custodial Bitcoin wallet core",
	Long: `walletcore is a terminal-based non-custodial Bitcoin wallet.

It derives BIP84 (P2WPKH) addresses from a BIP39 mnemonic, tracks balances
and transaction history against an Electrum server, and builds, signs, and
broadcasts transactions entirely offline up to the final broadcast call.

Example:
  walletcore wallet create main
  walletcore receive
  walletcore tx send --to bc1q... --amount 0.001`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		formatErr(err)
		return err
	}
	return nil
}

// formatErr prints the error with proper formatting.
func formatErr(err error) {
	format := output.FormatText
	if formatter != nil {
		format = formatter.Format()
	}
	if fmtErr := output.FormatError(os.Stderr, err, format); fmtErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v (formatting failed: %v)\n", err, fmtErr)
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return walleterr.ExitCode(err)
}

// connectTimeout bounds how long initGlobals waits for the Electrum
// connection to come up before proceeding anyway; commands that need the
// network surface their own NetworkUnavailable error if it never arrives.
const connectTimeout = 5 * time.Second

// initGlobals initializes global configuration, logger, infrastructure,
// and the wallet façade.
//
//nolint:gocognit,gocyclo // Initialization logic requires multiple conditional branches
func initGlobals(cmd *cobra.Command) error {
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	configPath := config.Path(home)
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg = config.Defaults()
			cfg.Home = home
		} else {
			fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
			cfg = config.Defaults()
			cfg.Home = home
		}
	}

	config.ApplyEnvironment(cfg)

	if homeDir != "" {
		cfg.Home = homeDir
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}

	if strings.HasPrefix(cfg.Home, "~/") {
		if userHome, homeErr := os.UserHomeDir(); homeErr == nil {
			cfg.Home = filepath.Join(userHome, cfg.Home[2:])
		}
	}
	for _, w := range cfg.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	logLevel := config.ParseLogLevel(cfg.Logging.Level)
	logger, err = config.NewLogger(logLevel, cfg.Logging.File)
	if err != nil {
		logger = config.NullLogger()
	}

	explicitFormat := output.ParseFormat(cfg.Output.DefaultFormat)
	detectedFormat := output.DetectFormat(os.Stdout, explicitFormat)
	formatter = output.NewFormatter(detectedFormat, os.Stdout)

	client = electrum.New(electrum.Config{
		Host: cfg.Electrum.Host,
		Port: cfg.Electrum.Port,
		SSL:  cfg.Electrum.SSL,
	})
	var electrumCtx context.Context
	electrumCtx, electrumCancel = context.WithCancel(context.Background())
	go client.Run(electrumCtx)
	waitConnected(client, connectTimeout)

	secrets := secretstore.New(secretstore.AlwaysAllow{})
	repo = walletrepo.New(filepath.Join(cfg.Home, "wallets"), secrets, client)
	if loadErr := repo.Load(); loadErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load wallet index: %v\n", loadErr)
	}

	svc = usecases.NewService(&usecases.Dependencies{
		Config:  cfg,
		Repo:    repo,
		Client:  client,
		Logger:  logger,
		DataDir: filepath.Join(cfg.Home, "index"),
	})

	cmdCtx = NewCommandContext(cfg, logger, formatter, svc)
	SetCmdContext(cmd, cmdCtx)

	return nil
}

// waitConnected blocks until the Electrum client reaches Connected (or
// Failed) or the timeout elapses, whichever comes first.
func waitConnected(c *electrum.Client, timeout time.Duration) {
	if c.State() == electrum.Connected {
		return
	}
	ch, cancel := c.SubscribeConnectionState()
	defer cancel()

	deadline := time.After(timeout)
	for {
		select {
		case state := <-ch:
			if state == electrum.Connected || state == electrum.Failed {
				return
			}
		case <-deadline:
			return
		}
	}
}

// cleanup persists wallet state and releases resources.
func cleanup() {
	if repo != nil {
		if err := repo.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save wallet index: %v\n", err)
		}
	}
	if svc != nil {
		svc.Close()
	}
	if electrumCancel != nil {
		electrumCancel()
	}
	if logger != nil {
		if closeErr := logger.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close logger: %v\n", closeErr)
		}
	}
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() *config.Logger {
	return logger
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

// Context returns the global command context.
func Context() *CommandContext {
	return cmdCtx
}

// Version information, set at build time.
//
//nolint:gochecknoglobals // Version info set at build time via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// versionCmd shows version information.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version, build commit, and build date.`,
	Run: func(cmd *cobra.Command, _ []string) {
		if formatter != nil && formatter.Format() == output.FormatJSON {
			cmd.Println("{")
			cmd.Printf(`  "version": "%s",`+"\n", Version)
			cmd.Printf(`  "commit": "%s",`+"\n", GitCommit)
			cmd.Printf(`  "date": "%s"`+"\n", BuildDate)
			cmd.Println("}")
		} else {
			cmd.Printf("walletcore version %s\n", Version)
			cmd.Printf("  commit: %s\n", GitCommit)
			cmd.Printf("  built:  %s\n", BuildDate)
		}
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "wallet data directory (default: ~/.walletcore)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
