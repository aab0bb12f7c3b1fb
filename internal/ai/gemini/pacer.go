package gemini

import (
	"context"
	"sync"
	"time"

	"github.com/jobsniper/jobsniper/internal/utils"
)

// pacer enforces a minimum interval between consecutive external calls.
// It is a hard floor across the whole batch: concurrent callers queue on
// the mutex, so the interval holds no matter how requests are dispatched.
type pacer struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func newPacer(interval time.Duration) *pacer {
	return &pacer{interval: interval}
}

// wait blocks until at least the configured interval has passed since the
// previous admitted call, then records the admission. Returns the context
// error when cancelled while waiting.
func (p *pacer) wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.last.IsZero() {
		if d := p.interval - time.Since(p.last); d > 0 {
			if err := utils.WaitFor(ctx, d); err != nil {
				return err
			}
		}
	}

	p.last = time.Now()
	return nil
}
