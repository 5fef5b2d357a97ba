package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/questlog/internal/credential"
	"github.com/nhle/questlog/internal/logging"
	"github.com/nhle/questlog/internal/model"
	"github.com/nhle/questlog/internal/notify"
	"github.com/nhle/questlog/internal/quest"
	"github.com/nhle/questlog/internal/session"
	"github.com/nhle/questlog/internal/settings"
	"github.com/nhle/questlog/internal/store"
	"github.com/nhle/questlog/internal/tracker"
)

// vaultOpener opens the passphrase vault kept next to the config file.
type vaultOpener func(dir string) (*credential.Vault, error)

type rootOptions struct {
	configPath string
	dbPath     string
	userID     string
	role       string
	passphrase string

	openVault vaultOpener
}

// env holds the services one command invocation works with.
type env struct {
	cfg         *model.AppConfig
	cfgPath     string
	user        model.User
	logger      *zap.Logger
	store       *store.SQLiteStore
	db          *quest.DB
	settings    *settings.Settings
	broadcaster *notify.Broadcaster
	tracker     *tracker.Tracker
}

func newRootCmd(openVault vaultOpener) *cobra.Command {
	opts := &rootOptions{openVault: openVault}

	root := &cobra.Command{
		Use:   "questlog",
		Short: "Quest journal and tracker for tabletop sessions",
		Long: `questlog keeps a shared quest journal in a SQLite database.

Run without a subcommand to open the tracker.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "config file")
	flags.StringVar(&opts.dbPath, "db", "", "journal database (overrides database.path)")
	flags.StringVar(&opts.userID, "user", "", "acting user id (overrides user.id)")
	flags.StringVar(&opts.role, "role", "", "acting role: player, trusted, assistant or gamemaster")
	flags.StringVar(&opts.passphrase, "passphrase", os.Getenv("QUESTLOG_PASSPHRASE"), "game master passphrase")

	root.AddCommand(
		newInitCmd(opts),
		newListCmd(opts),
		newAddCmd(opts),
		newShowCmd(opts),
		newDeleteCmd(opts),
		newMoveCmd(opts),
		newTaskCmd(opts),
		newRewardCmd(opts),
		newPrimaryCmd(opts),
		newSetCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newPassphraseCmd(opts),
	)
	return root
}

// loadConfig reads the config file and applies the flag overrides.
func (o *rootOptions) loadConfig() (*model.AppConfig, model.User, error) {
	cfg, err := model.LoadConfig(o.configPath)
	if err != nil {
		return nil, model.User{}, err
	}
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}
	if o.userID != "" {
		cfg.User.ID = o.userID
		cfg.User.Name = o.userID
	}
	if o.role != "" {
		cfg.User.Role = o.role
	}
	user, err := cfg.ActingUser()
	if err != nil {
		return nil, model.User{}, err
	}
	return cfg, user, nil
}

// checkPassphrase refuses privileged roles that do not know the stored
// game master passphrase.
func (o *rootOptions) checkPassphrase(user model.User) error {
	if !user.IsGM() {
		return nil
	}
	v, err := o.openVault(filepath.Dir(o.configPath))
	if err != nil {
		return err
	}
	if err := v.Verify(o.passphrase); err != nil {
		return fmt.Errorf("acting as %s: %w", user.Role, err)
	}
	return nil
}

// open loads configuration, checks the passphrase and connects to the
// journal. Callers Close the returned env.
func (o *rootOptions) open(ctx context.Context) (*env, error) {
	cfg, user, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := o.checkPassphrase(user); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	st, err := settings.New(ctx, s, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	db := quest.NewDB(s, user, logger)
	if err := db.Load(ctx); err != nil {
		s.Close()
		return nil, err
	}

	b := notify.NewBroadcaster(s, notify.NewClientID(), logger)
	e := &env{
		cfg:         cfg,
		cfgPath:     o.configPath,
		user:        user,
		logger:      logger,
		store:       s,
		db:          db,
		settings:    st,
		broadcaster: b,
	}
	e.tracker = tracker.New(db, st, session.New(), b, cfg.Tracker, logger)
	return e, nil
}

// Close flushes pending writes and closes the database.
func (e *env) Close() error {
	e.tracker.Close()
	_ = e.logger.Sync()
	return e.store.Close()
}

func (e *env) pollInterval() time.Duration {
	return time.Duration(e.cfg.Notify.PollIntervalMS) * time.Millisecond
}

// withEnv adapts a command body that needs an open env into a RunE.
func withEnv(opts *rootOptions, fn func(cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		e, err := opts.open(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, e.Close())
		}()
		return fn(cmd, e, args)
	}
}

// lookup returns the quest with id or a not found error.
func (e *env) lookup(id string) (*quest.Quest, error) {
	q := e.db.GetQuest(id)
	if q == nil {
		return nil, fmt.Errorf("quest %s: %w", id, store.ErrNotFound)
	}
	return q, nil
}

// saved turns a skipped save into an error for the command line.
func saved(what string, out quest.Outcome, err error) error {
	if err != nil {
		return err
	}
	if out.Skipped() {
		return fmt.Errorf("%s not saved: %s", what, out)
	}
	return nil
}
