package photojobs

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
)

type recordingCompositor struct {
	mu       sync.Mutex
	teams    []int
	panicFor int
}

func (c *recordingCompositor) ComposeTeamPhoto(ctx context.Context, teamID int) error {
	if teamID == c.panicFor {
		panic("compositor blew up")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teams = append(c.teams, teamID)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueueProcessesJobsInOrder(t *testing.T) {
	compositor := &recordingCompositor{panicFor: -1}
	q := NewQueue(compositor, 8, discardLogger())

	for _, teamID := range []int{3, 1, 2} {
		if !q.EnqueueTeam(teamID) {
			t.Fatalf("enqueue %d refused", teamID)
		}
	}
	q.Shutdown()

	want := []int{3, 1, 2}
	if len(compositor.teams) != len(want) {
		t.Fatalf("processed %v, want %v", compositor.teams, want)
	}
	for i := range want {
		if compositor.teams[i] != want[i] {
			t.Errorf("job %d = team %d, want %d", i, compositor.teams[i], want[i])
		}
	}
}

func TestQueueSurvivesPanickingJob(t *testing.T) {
	compositor := &recordingCompositor{panicFor: 2}
	q := NewQueue(compositor, 8, discardLogger())

	q.EnqueueTeam(1)
	q.EnqueueTeam(2)
	q.EnqueueTeam(3)
	q.Shutdown()

	want := []int{1, 3}
	if len(compositor.teams) != len(want) {
		t.Fatalf("processed %v, want %v", compositor.teams, want)
	}
}

func TestQueueRefusesWhenFull(t *testing.T) {
	// A zero-size request falls back to the default buffer; use a blocked
	// compositor to fill a tiny queue instead.
	blocker := &blockingCompositor{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	q := NewQueue(blocker, 1, discardLogger())
	defer func() {
		close(blocker.release)
		q.Shutdown()
	}()

	q.EnqueueTeam(1)
	<-blocker.started // worker is stuck inside job 1, buffer is empty
	q.EnqueueTeam(2)  // fills the buffer

	for i := 0; i < 3; i++ {
		if q.EnqueueTeam(100 + i) {
			t.Fatal("full queue accepted a job instead of refusing")
		}
	}
}

type blockingCompositor struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (c *blockingCompositor) ComposeTeamPhoto(ctx context.Context, teamID int) error {
	c.once.Do(func() { close(c.started) })
	<-c.release
	return nil
}
