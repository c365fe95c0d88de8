package guide

import "time"

// tickTask is a cancellable periodic re-evaluation trigger. It carries no
// payload; all timing math is relative to absolute deadlines, so missed or
// delayed ticks self-correct. Tasks are re-derived on every transition that
// changes instrument activity rather than left running.
type tickTask struct {
	stop chan struct{}
}

// startTickTask runs fn on the given cadence until cancelled. Cancellation
// is asynchronous: a tick already in flight completes, which is safe because
// every tick re-checks current state instead of carrying a payload.
func startTickTask(interval time.Duration, fn func()) *tickTask {
	t := &tickTask{stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				select {
				case <-t.stop:
					return
				default:
				}
				fn()
			}
		}
	}()
	return t
}

func (t *tickTask) cancel() {
	if t != nil {
		close(t.stop)
	}
}
