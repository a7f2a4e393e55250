// Package app wires the engine together: config loading and hot reload,
// logging, the notification ledger, the directory client, the ping
// handler, the HTTP server, and the retention cron.
package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"mentionbot/internal/config"
	"mentionbot/internal/github"
	"mentionbot/internal/notifications"
	"mentionbot/internal/pings"
	"mentionbot/internal/runtime/supervisor"
	"mentionbot/internal/server"
	logx "mentionbot/pkg/logx"
)

type App struct {
	cfgPath string

	cfgm *config.ConfigManager
	sup  *supervisor.Supervisor

	log  logx.Logger
	logs *logx.Service

	store   notifications.Store
	client  *github.Client
	handler *pings.Handler
	srv     *server.Server
	httpSrv *http.Server

	retention retentionSettings
	cronSched *cron.Cron
}

func New(cfgPath string) (*App, error) {
	cfgm := config.NewConfigManager(cfgPath)
	cfg, err := cfgm.Load()
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	log = log.With(logx.String("comp", "app"))

	storeCfg, err := mapStorageConfig(cfg)
	if err != nil {
		return nil, err
	}
	store, err := notifications.Open(storeCfg, log.With(logx.String("comp", "ledger")))
	if err != nil {
		return nil, err
	}

	dirCfg, err := mapDirectoryConfig(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	client := github.NewClient(dirCfg, log.With(logx.String("comp", "directory")))

	handler := pings.NewHandler(client, store, log.With(logx.String("comp", "pings")))

	srvCfg, err := mapServerConfig(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}
	srv := server.New(srvCfg, handler, store, log.With(logx.String("comp", "http")))

	retention, err := mapRetentionConfig(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &App{
		cfgPath:   cfgPath,
		cfgm:      cfgm,
		log:       log,
		logs:      logSvc,
		store:     store,
		client:    client,
		handler:   handler,
		srv:       srv,
		httpSrv:   srv.HTTPServer(),
		retention: retention,
	}, nil
}

// Done is closed when the supervisor context is canceled (fatal error or Stop).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor, if any.
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	a.sup = supervisor.New(ctx,
		supervisor.WithLogger(a.log),
		supervisor.WithCancelOnError(true))

	// Transactional config reload: validate before commit/publish.
	a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
	a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
		return config.Validate(cfg)
	})

	a.sup.Go("http.serve", func(_ context.Context) error {
		err := a.httpSrv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	a.applyRetention(a.retention)

	// Hot reload fan-out.
	sub := a.cfgm.Subscribe(8)
	a.sup.Go0("config.reload", func(c context.Context) {
		defer a.cfgm.Unsubscribe(sub)
		lastApplied := a.cfgm.Get()
		for {
			select {
			case <-c.Done():
				return
			case newCfg, ok := <-sub:
				if !ok {
					return
				}
				// Coalesce bursts: keep only the latest config.
				for {
					select {
					case newer := <-sub:
						if newer != nil {
							newCfg = newer
						}
					default:
						goto APPLY
					}
				}
			APPLY:
				a.applyReload(lastApplied, newCfg)
				lastApplied = newCfg
			}
		}
	})

	a.sup.GoRestart("config.watch", func(c context.Context) error {
		return a.cfgm.Watch(c)
	}, time.Second, 30*time.Second)

	a.log.Info("engine started", logx.String("addr", a.httpSrv.Addr))
	return nil
}

// applyReload applies a validated new config to the running services.
// Logging and retention reconfigure live; server, storage and directory
// settings need a restart and only produce a warning.
func (a *App) applyReload(oldCfg, newCfg *config.Config) {
	sections, attrs := config.SummarizeConfigChange(oldCfg, newCfg)
	if len(sections) == 0 {
		a.log.Debug("config reload received, but no effective changes detected")
		return
	}
	fields := append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, attrs...)
	a.log.Debug("config change summary", fields...)

	for _, s := range sections {
		switch s {
		case "server", "storage", "github":
			a.log.Warn("config changed; restart required for changes to take effect",
				logx.String("section", s))
		case "logging":
			a.logs.Apply(logx.Config{
				Level:   newCfg.Logging.Level,
				Console: newCfg.Logging.Console,
				File: logx.FileConfig{
					Enabled: newCfg.Logging.File.Enabled,
					Path:    newCfg.Logging.File.Path,
				},
			})
		case "retention":
			retention, err := mapRetentionConfig(newCfg)
			if err != nil {
				a.log.Warn("invalid retention config; keeping previous", logx.Any("err", err))
				continue
			}
			a.applyRetention(retention)
		}
	}

	a.log.Info("config reloaded", logx.String("changed", strings.Join(sections, ",")))
}

// applyRetention replaces the running retention cron with one matching s.
func (a *App) applyRetention(s retentionSettings) {
	if a.cronSched != nil {
		a.cronSched.Stop()
		a.cronSched = nil
	}
	a.retention = s
	if !s.enabled {
		return
	}

	log := a.log.With(logx.String("comp", "retention"))
	sched := cron.New()
	_, err := sched.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(a.sup.Context(), time.Minute)
		defer cancel()

		cutoff := time.Now().Add(-s.maxAge)
		n, err := a.store.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			log.Error("pruning old notifications failed", logx.Err(err))
			return
		}
		if n > 0 {
			log.Info("pruned old notifications", logx.Int64("deleted", n), logx.Time("cutoff", cutoff))
		}
	})
	if err != nil {
		// Validate() parses the schedule before commit, so this only fires
		// on a drifted default.
		log.Error("invalid retention schedule", logx.String("schedule", s.schedule), logx.Err(err))
		return
	}
	sched.Start()
	a.cronSched = sched
	log.Info("retention enabled",
		logx.String("schedule", s.schedule), logx.Duration("max_age", s.maxAge))
}

func (a *App) Stop(ctx context.Context) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("engine stopping")

	// Stop intake first so no new events land in the ledger mid-shutdown.
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("http shutdown incomplete", logx.Err(err))
	}
	cancel()

	if a.cronSched != nil {
		stopCtx := a.cronSched.Stop()
		select {
		case <-stopCtx.Done():
		case <-time.After(5 * time.Second):
			a.log.Warn("retention job still running at shutdown")
		}
		a.cronSched = nil
	}

	err := a.sup.Stop(ctx)

	if cerr := a.store.Close(); cerr != nil {
		a.log.Warn("closing ledger failed", logx.Err(cerr))
	}

	a.log.Info("engine stopped")
	if a.logs != nil {
		a.logs.Close()
	}
	return err
}
