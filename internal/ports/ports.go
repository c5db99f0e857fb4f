package ports

import (
	"context"
	"time"

	"PapersNotifier/internal/domain"
)

// PendingSource loads papers queued for announcement by the upstream collector.
type PendingSource interface {
	LoadPending() ([]domain.Paper, error)
}

// SentLedger persists announced paper ids for deduplication across runs.
type SentLedger interface {
	LoadSentIDs() (map[string]struct{}, error)
	AppendSent(papers []domain.Paper) error
}

// Notifier formats a batch of papers and delivers it to the team channel.
// Exactly one delivery attempt per call.
type Notifier interface {
	Announce(ctx context.Context, papers []domain.Paper, now time.Time) error
}

// Scheduler controls when notification runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
