package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/colorprofile"

	"github.com/rob637/passcpa-sub012/internal/content"
	"github.com/rob637/passcpa-sub012/internal/selector"
	"github.com/rob637/passcpa-sub012/internal/session"
	"github.com/rob637/passcpa-sub012/internal/spacedrep"
	"github.com/rob637/passcpa-sub012/internal/store"
)

// app bundles the dependencies shared by subcommands.
type app struct {
	store    *store.Store
	content  *content.Provider
	sessions *session.Service
}

// openApp opens the store and builds the session service. seed 0 seeds the
// selector from the clock.
func openApp(seed int64) (*app, error) {
	dbPath, err := resolveDBPath()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	sched, err := spacedrep.NewScheduler(cfg.Scheduler)
	if err != nil {
		st.Close()
		return nil, err
	}

	sel := selector.New(cfg.Selector)
	if seed != 0 {
		sel = selector.NewSeeded(cfg.Selector, seed)
	}

	provider := content.NewProvider(st.ItemRepo(), cfg.Content.CacheSize)
	logger.Debug("store opened", "path", dbPath, "user_id", cfg.User)

	return &app{
		store:   st,
		content: provider,
		sessions: session.NewService(session.Deps{
			Content:   provider,
			Reviews:   st.ReviewRepo(),
			Selector:  sel,
			Scheduler: sched,
			Logger:    logger,
		}),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// output wraps w so styled text is downsampled to what the terminal
// supports, or stripped when w is not a terminal.
func output(w io.Writer) io.Writer {
	return colorprofile.NewWriter(w, os.Environ())
}
