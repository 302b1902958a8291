package ledger

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// RunCleanup deletes entries past retention every interval until ctx is cancelled.
// One pass runs immediately on start.
func (l *Ledger) RunCleanup(ctx context.Context, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		l.cleanup(ctx, retention)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (l *Ledger) cleanup(ctx context.Context, retention time.Duration) {
	deleted, err := l.DeleteOlderThan(ctx, retention)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn().Err(err).Msg("Failed to clean up action ledger")
		}
		return
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Dur("retention", retention).Msg("Cleaned up action ledger")
	}
}
