package workers

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/safaconnect/tournament-engine/services"
)

const jobTimeout = 30 * time.Second

// VerifyPool runs facial verification off the request path. Face detection
// and embedding are CPU bound, so a bounded set of workers drains a buffered
// queue instead of spawning a goroutine per registration.
type VerifyPool struct {
	verification services.VerificationService
	logger       *slog.Logger
	jobs         chan int
	wg           sync.WaitGroup
	closeOnce    sync.Once
}

func NewVerifyPool(verification services.VerificationService, workers, queueSize int, logger *slog.Logger) *VerifyPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers * 16
	}

	p := &VerifyPool{
		verification: verification,
		logger:       logger,
		jobs:         make(chan int, queueSize),
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(i + 1)
	}

	logger.Info("verification worker pool started",
		slog.Int("workers", workers),
		slog.Int("queue_size", queueSize))
	return p
}

func (p *VerifyPool) worker(id int) {
	defer p.wg.Done()

	for registrationID := range p.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)

		start := time.Now()
		registration, err := p.verification.ProcessRegistration(ctx, registrationID)
		duration := time.Since(start)
		cancel()

		if err != nil {
			p.logger.Error("verification job failed",
				slog.Int("worker_id", id),
				slog.Int("registration_id", registrationID),
				slog.Duration("duration", duration),
				slog.Any("error", err))
			continue
		}
		p.logger.Info("verification job completed",
			slog.Int("worker_id", id),
			slog.Int("registration_id", registrationID),
			slog.String("status", string(registration.Status)),
			slog.Duration("duration", duration))
	}
}

// Enqueue submits a registration for verification without blocking the
// caller. A full queue rejects the job; the registration stays pending.
func (p *VerifyPool) Enqueue(registrationID int) bool {
	select {
	case p.jobs <- registrationID:
		return true
	default:
		return false
	}
}

// Shutdown stops accepting jobs and waits for in-flight work to finish.
func (p *VerifyPool) Shutdown() {
	p.closeOnce.Do(func() {
		close(p.jobs)
	})
	p.wg.Wait()
}
