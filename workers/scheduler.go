package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/safaconnect/tournament-engine/services"
)

const statusRollInterval = time.Minute

// Scheduler owns the periodic background jobs, currently the tournament
// status roll-forward that moves tournaments through their lifecycle as
// their dates pass.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

func NewScheduler(tournaments services.TournamentService, logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(statusRollInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			changed, err := tournaments.RollForwardStatuses(ctx)
			if err != nil {
				logger.Error("tournament status roll-forward failed", slog.Any("error", err))
				return
			}
			if changed > 0 {
				logger.Info("tournament statuses rolled forward", slog.Int("changed", changed))
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register status roll-forward job: %w", err)
	}

	return &Scheduler{scheduler: s, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.scheduler.Start()
	s.logger.Info("background scheduler started")
}

func (s *Scheduler) Shutdown() error {
	return s.scheduler.Shutdown()
}
