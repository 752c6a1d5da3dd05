package photojobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const jobTimeout = 60 * time.Second

// Queue runs team photo compositing off the request path. Jobs are
// deduplicated only by the channel buffer; composing the same team twice
// is wasteful but harmless, the last run wins.
type Queue struct {
	compositor Compositor
	logger     *slog.Logger

	jobs      chan int
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewQueue(compositor Compositor, queueSize int, logger *slog.Logger) *Queue {
	if queueSize <= 0 {
		queueSize = 32
	}
	q := &Queue{
		compositor: compositor,
		logger:     logger,
		jobs:       make(chan int, queueSize),
	}
	q.wg.Add(1)
	go q.worker()
	return q
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for teamID := range q.jobs {
		q.run(teamID)
	}
}

// run isolates one job so a panic inside the compositor cannot take the
// worker down with it.
func (q *Queue) run(teamID int) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("team photo job panicked",
				slog.Int("team_id", teamID),
				slog.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	started := time.Now()
	if err := q.compositor.ComposeTeamPhoto(ctx, teamID); err != nil {
		q.logger.Error("team photo job failed",
			slog.Int("team_id", teamID),
			slog.Any("error", err))
		return
	}
	q.logger.Debug("team photo job finished",
		slog.Int("team_id", teamID),
		slog.Duration("took", time.Since(started)))
}

// EnqueueTeam schedules a composite rebuild for the team. Returns false
// when the queue is full or closed; the rebuild then simply waits for the
// next verified member to trigger it.
func (q *Queue) EnqueueTeam(teamID int) bool {
	select {
	case q.jobs <- teamID:
		return true
	default:
		return false
	}
}

// Shutdown stops accepting jobs and waits for the in-flight one.
func (q *Queue) Shutdown() {
	q.closeOnce.Do(func() {
		close(q.jobs)
	})
	q.wg.Wait()
}
