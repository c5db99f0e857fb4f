package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"PapersNotifier/internal/ports"
)

// PipelineDeps wires all driven adapters into the notification pipeline.
type PipelineDeps struct {
	Pending  ports.PendingSource
	Ledger   ports.SentLedger
	Notifier ports.Notifier
	Logger   *slog.Logger
}

// Pipeline implements one notification cycle: load pending papers, announce
// them, record the announced ids.
type Pipeline struct {
	pending  ports.PendingSource
	ledger   ports.SentLedger
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		pending:  deps.Pending,
		ledger:   deps.Ledger,
		notifier: deps.Notifier,
		logger:   deps.Logger,
	}
}

// Run executes a single cycle. An empty pending batch is a successful no-op.
// The ledger is updated only after a confirmed delivery, so a failed send
// leaves the whole batch to be retried on the next invocation.
func (p *Pipeline) Run(ctx context.Context, now time.Time) error {
	if p.pending == nil {
		return nil
	}

	papers, err := p.pending.LoadPending()
	if err != nil {
		return fmt.Errorf("load pending papers: %w", err)
	}

	if len(papers) == 0 {
		p.info("no new papers found, skipping notification")
		return nil
	}

	p.info("preparing slack message", "papers", len(papers))

	if p.notifier == nil {
		return fmt.Errorf("notifier is not configured")
	}
	if err := p.notifier.Announce(ctx, papers, now); err != nil {
		return fmt.Errorf("send slack message: %w", err)
	}

	if p.ledger != nil {
		if err := p.ledger.AppendSent(papers); err != nil {
			return fmt.Errorf("record sent papers: %w", err)
		}
	}

	p.info("notification run finished", "papers", len(papers))
	return nil
}

func (p *Pipeline) info(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}
