// internal/services/poller.go
package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Poll calls fetch immediately and then every interval, sending each result
// that differs from the previous one. Fetch errors are logged and skipped.
// The returned channel is closed when ctx is done.
func Poll[T any](ctx context.Context, interval time.Duration, fetch func(context.Context) (T, error), same func(a, b T) bool, log *logrus.Entry) <-chan T {
	out := make(chan T, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		var last T
		sent := false
		for {
			if v, err := fetch(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.WithError(err).Debug("Poll failed")
			} else if !sent || !same(last, v) {
				select {
				case out <- v:
					last, sent = v, true
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
