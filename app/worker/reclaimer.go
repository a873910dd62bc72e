package worker

import (
	"context"
	"log/slog"
	"reservation-service/app/domain"
	"sync"
	"time"
)

// ExpiryReclaimer periodically purges expired reservation rows so storage
// stays bounded and the active-reservation metrics stay honest. Availability
// does not depend on it running: expiry is enforced at read time.
type ExpiryReclaimer struct {
	service  domain.ReservationService
	interval time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewExpiryReclaimer(service domain.ReservationService, interval time.Duration) *ExpiryReclaimer {
	return &ExpiryReclaimer{
		service:  service,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (r *ExpiryReclaimer) Start() {
	r.wg.Add(1)
	go r.loop()
}

func (r *ExpiryReclaimer) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.stop:
			return
		}
	}
}

func (r *ExpiryReclaimer) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := r.service.SweepExpired(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "[ExpiryReclaimer] sweep", "sweepExpired", err)
		return
	}

	if count > 0 {
		slog.InfoContext(ctx, "[ExpiryReclaimer] sweep", "reclaimed", count)
	}
}

func (r *ExpiryReclaimer) Stop() {
	close(r.stop)
	r.wg.Wait()
}
