package app

import (
	"context"
	"log/slog"
	"time"

	"PapersNotifier/internal/config"
	"PapersNotifier/internal/infrastructure/scheduler"
	"PapersNotifier/internal/infrastructure/slack"
	"PapersNotifier/internal/infrastructure/storage"
	"PapersNotifier/internal/logging"
	"PapersNotifier/internal/usecase"
)

// Application wires configs to the notification pipeline and its lifecycle.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store := storage.NewCSVStore(
		cfg.Files.PendingPath,
		cfg.Files.LedgerPath,
		baseLogger.With("component", "storage"),
	)
	notifier := slack.NewNotifier(
		cfg.Notifications.Slack.WebhookURL,
		baseLogger.With("component", "slack"),
	)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Pending:  store,
		Ledger:   store,
		Notifier: notifier,
		Logger:   baseLogger.With("component", "pipeline"),
	})
	return &Application{cfg: cfg, logger: baseLogger, pipeline: pipeline}
}

// Run executes one notification cycle, or blocks on the cron schedule when
// the scheduler is enabled in configuration.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	if !a.cfg.Scheduler.Enabled {
		return a.pipeline.Run(ctx, time.Now().In(a.cfg.Scheduler.Location()))
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	runner := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))

	if err := runner.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression, "timezone", a.cfg.Scheduler.Timezone)

	<-ctx.Done()
	return runner.Stop(context.Background())
}
