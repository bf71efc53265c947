package timers

import (
	"context"
	"time"

	"github.com/dori/tempo/internal/model"
)

// elapsedTask emits the running session duration once immediately and
// then every interval until ctx is done.
func elapsedTask(startedAt time.Time, interval time.Duration, now func() time.Time, emit func(ctx context.Context, e model.Elapsed)) Task {
	return func(ctx context.Context) {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			if ctx.Err() != nil {
				return
			}
			emit(ctx, model.Decompose(now().Sub(startedAt)))

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}
}
