package runner

import (
	"context"
	"time"
)

// startSampler calls tick every interval until the returned stop function is
// called. stop cancels the ticker, waits for the goroutine to exit and
// returns how many ticks fired. A non-positive interval samples nothing.
func startSampler(ctx context.Context, interval time.Duration, tick func(elapsed time.Duration)) (stop func() int) {
	if interval <= 0 {
		return func() int { return 0 }
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	began := time.Now()
	count := 0

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick(time.Since(began))
				count++
			}
		}
	}()

	return func() int {
		cancel()
		<-done
		return count
	}
}
