package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/questlog/internal/app"
	"github.com/nhle/questlog/internal/model"
	"github.com/nhle/questlog/internal/notify"
)

// runTUI opens the tracker in the alternate screen until the user quits.
func runTUI(ctx context.Context, opts *rootOptions) error {
	e, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	poller := notify.NewPoller(e.store, e.broadcaster.ClientID(), e.pollInterval(), e.logger)
	m := app.New(app.Deps{
		DB:          e.db,
		Settings:    e.settings,
		Tracker:     e.tracker,
		Broadcaster: e.broadcaster,
		Poller:      poller,
		Logger:      e.logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// A missing config file leaves nothing to watch.
	if err := model.WatchConfig(opts.configPath, func(cfg *model.AppConfig) {
		p.Send(app.ConfigChangedMsg{Config: cfg})
	}); err != nil {
		e.logger.Debug("config watch disabled", zap.Error(err))
	}

	e.logger.Info("tracker started",
		zap.String("user", e.user.ID),
		zap.Stringer("role", e.user.Role),
		zap.String("client", e.broadcaster.ClientID()))

	if _, err := p.Run(); err != nil {
		poller.Stop()
		return fmt.Errorf("running tracker: %w", err)
	}
	return nil
}
