package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"property-import-backend/internal/models"
	"property-import-backend/internal/services"
)

type recordingRunner struct {
	mu      sync.Mutex
	sources []string
	err     error
}

func (r *recordingRunner) RunImport(ctx context.Context, source string) (models.ImportJob, []string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, source)
	return models.ImportJob{ID: "job-" + source}, []string{"p1"}, r.err
}

func (r *recordingRunner) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.sources...)
}

func TestScheduler_RejectsInvalidSpec(t *testing.T) {
	s := services.NewScheduler(&recordingRunner{}, time.Minute, nil)

	err := s.Schedule("testsource", "every tuesday")
	assert.Error(t, err)
	assert.Empty(t, s.Scheduled())
}

func TestScheduler_ScheduleReplaceAndRemove(t *testing.T) {
	s := services.NewScheduler(&recordingRunner{}, time.Minute, nil)

	require.NoError(t, s.Schedule("testsource", "0 */6 * * *"))
	require.NoError(t, s.Schedule("testsource", "@daily"))
	require.NoError(t, s.Schedule("feed", "*/30 * * * * *"))
	assert.ElementsMatch(t, []string{"testsource", "feed"}, s.Scheduled())

	s.Unschedule("feed")
	assert.Equal(t, []string{"testsource"}, s.Scheduled())
}

func TestScheduler_TriggerRunsImport(t *testing.T) {
	runner := &recordingRunner{err: errors.New("boom")}
	s := services.NewScheduler(runner, time.Minute, nil)

	s.Trigger("testsource")
	assert.Equal(t, []string{"testsource"}, runner.calls())
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	runner := &recordingRunner{}
	s := services.NewScheduler(runner, time.Minute, nil)
	require.NoError(t, s.Schedule("testsource", "@every 1s"))

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return len(runner.calls()) > 0 }, 3*time.Second, 50*time.Millisecond)
}
