package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/eventwiz/internal/api"
	"github.com/mark3labs/eventwiz/internal/config"
	"github.com/mark3labs/eventwiz/internal/event"
	"github.com/mark3labs/eventwiz/internal/logger"
	"github.com/mark3labs/eventwiz/internal/nats"
	"github.com/mark3labs/eventwiz/internal/notify"
	"github.com/mark3labs/eventwiz/internal/submit"
	"github.com/mark3labs/eventwiz/internal/wizard"
	"github.com/nats-io/nats.go/jetstream"
)

var rootFlags struct {
	apiURL   string
	dataDir  string
	logLevel string
	logFile  string
	session  string
	noNotify bool
}

// loadConfig reads the config files and environment and applies the root
// flags on top. With strict set the result must be usable for API calls.
func loadConfig(strict bool) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if rootFlags.apiURL != "" {
		cfg.APIURL = rootFlags.apiURL
	}
	if rootFlags.dataDir != "" {
		cfg.DataDir = rootFlags.dataDir
	}
	if rootFlags.logLevel != "" {
		cfg.LogLevel = rootFlags.logLevel
	}
	if rootFlags.logFile != "" {
		cfg.LogFile = rootFlags.logFile
	}
	if rootFlags.noNotify {
		cfg.Notify = false
	}

	if strict {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if err := logger.Default.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logging: %w", err)
	}
	return cfg, nil
}

// app holds what every wizard command needs: config, the events client and
// the optional notification bus.
type app struct {
	cfg    *config.Config
	client *api.Client
	nats   *nats.Embedded
	bus    *notify.Bus
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig(true)
	if err != nil {
		return nil, err
	}

	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, client: client}
	if cfg.Notify {
		// The wizard works without the bus; outcomes are then only logged.
		if err := a.openBus(ctx); err != nil {
			logger.Warn("Notification bus unavailable: %v", err)
		}
	}
	return a, nil
}

func newClient(cfg *config.Config) (*api.Client, error) {
	client, err := api.NewClient(api.ClientConfig{
		BaseURL: cfg.APIURL,
		Token:   cfg.APIToken,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create events client: %w", err)
	}
	return client, nil
}

func (a *app) openBus(ctx context.Context) error {
	emb, stream, err := startBus(ctx, a.cfg.DataDir)
	if err != nil {
		return err
	}
	a.nats = emb
	a.bus = notify.NewBus(emb.JS, stream, rootFlags.session)
	logger.Debug("Recording outcomes for session %s", a.bus.Session())
	return nil
}

// startBus starts the embedded NATS server under dataDir and ensures the
// outcome stream exists.
func startBus(ctx context.Context, dataDir string) (*nats.Embedded, jetstream.Stream, error) {
	emb, err := nats.Start(filepath.Join(dataDir, "nats"))
	if err != nil {
		return nil, nil, err
	}
	stream, err := nats.SetupStream(ctx, emb.JS)
	if err != nil {
		_ = emb.Close()
		return nil, nil, err
	}
	return emb, stream, nil
}

// organizers loads the organizer lookup. An unreachable lookup is not fatal:
// the organizer field then accepts any id.
func (a *app) organizers(ctx context.Context) []api.Organizer {
	orgs, err := a.client.ListOrganizers(ctx)
	if err != nil {
		logger.Warn("Failed to load organizers: %v", err)
		return nil
	}
	return orgs
}

// submitter builds the submitter for wiz, reporting outcomes to the log and,
// when available, the bus.
func (a *app) submitter(wiz *event.Wizard) *submit.Submitter {
	notifiers := notify.Fanout{submit.NotifierFunc(logOutcome)}
	if a.bus != nil {
		notifiers = append(notifiers, a.bus)
	}
	return submit.New(wiz, a.client, submit.WithNotifier(notifiers))
}

func logOutcome(_ context.Context, n submit.Notification) error {
	if n.Success() {
		logger.Info("Outcome %s: %s", n.Kind, n.Message)
	} else {
		logger.Warn("Outcome %s on step %d: %s", n.Kind, n.Step, n.Message)
	}
	return nil
}

func (a *app) Close() {
	if err := a.nats.Close(); err != nil {
		logger.Warn("Failed to stop NATS: %v", err)
	}
}

// wizardOptions logs step transitions and blocked advances of a session.
func wizardOptions() []wizard.Option {
	return []wizard.Option{wizard.WithObserver(wizard.Observer{
		OnTransition: func(from, to int) {
			logger.Debug("Wizard moved from step %d to %d", from, to)
		},
		OnBlocked: func(step int, errs map[string]string) {
			logger.Debug("Wizard blocked on step %d: %d field error(s)", step, len(errs))
		},
	})}
}
