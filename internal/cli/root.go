// Package cli implements the bankctl command line client.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/me/gobank/internal/accounts"
	"github.com/me/gobank/internal/api"
	"github.com/me/gobank/internal/config"
	"github.com/me/gobank/internal/logging"
	"github.com/me/gobank/internal/rates"
	"github.com/me/gobank/internal/session"
	"github.com/me/gobank/internal/store"
)

var (
	flagConfig   string
	flagAPIURL   string
	flagDebug    bool
	flagLogLevel string

	cfg        *config.Config
	logger     *slog.Logger
	st         *store.SQLiteStore
	client     *api.Client
	sess       *session.Manager
	rateCache  *rates.Service
	accountSvc *accounts.Service
)

// NewRootCmd creates the root cobra command for bankctl.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bankctl",
		Short: "bankctl — command line client for the bank API",
		Long: "bankctl logs in to the banking API and manages accounts, transactions,\n" +
			"transfers, and ATM operations from the terminal. Sessions persist across\n" +
			"invocations and expired tokens are refreshed transparently.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if st != nil {
				st.Close()
			}
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (or GOBANK_CONFIG env)")
	root.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Bank API base URL (overrides config)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newAccountsCmd(),
		newTransactionsCmd(),
		newTransferCmd(),
		newATMCmd(),
		newAdminCmd(),
	)

	return root
}

// setup loads configuration and wires the client stack. The gateway and the
// session reference each other, so they are connected after construction.
func setup() error {
	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagAPIURL != "" {
		cfg.API.BaseURL = flagAPIURL
	}

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	if flagDebug {
		level = "debug"
	}
	logger = logging.NewLogger(logging.ParseLevel(level), cfg.Log.Format)

	st, err = store.NewSQLiteStore(statePath(), logger)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}

	client = api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger)
	sess = session.NewManager(st, logger,
		session.WithRefreshStrategy(session.ParseRefreshStrategy(cfg.Auth.RefreshStrategy)))
	sess.SetAPI(client)
	client.SetCredentials(sess)

	rateCache = rates.NewService(client, logger, rates.WithTTL(cfg.Rates.TTL))
	accountSvc = accounts.NewService(client, rateCache, sess, logger)
	return nil
}

// statePath resolves the session database location: configured path first,
// ~/.gobank/state.db otherwise.
func statePath() string {
	if cfg.Store.Path != "" {
		return cfg.Store.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "gobank-state.db"
	}
	dir := filepath.Join(home, ".gobank")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "gobank-state.db"
	}
	return filepath.Join(dir, "state.db")
}

// requireLogin fails a command early with a friendly message instead of
// letting it run into a 401.
func requireLogin() error {
	if !sess.IsLoggedIn() {
		return fmt.Errorf("not logged in; run \"bankctl login\" first")
	}
	return nil
}
