// File: /jobs/code_cleanup_job.go
package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CodeCleaner removes verification codes that expired before a given time.
type CodeCleaner interface {
	ClearExpiredCodes(ctx context.Context, before time.Time) (int64, error)
}

// CodeCleanupJob periodically clears expired six digit codes
type CodeCleanupJob struct {
	users   CodeCleaner
	log     *zerolog.Logger
	ticker  *time.Ticker
	done    chan struct{}
	stopped chan struct{}
	now     func() time.Time
}

func NewCodeCleanupJob(users CodeCleaner, interval time.Duration, log *zerolog.Logger) *CodeCleanupJob {
	return &CodeCleanupJob{
		users:   users,
		log:     log,
		ticker:  time.NewTicker(interval),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		now:     time.Now,
	}
}

// Start runs a cleanup immediately and then on every tick.
func (j *CodeCleanupJob) Start() {
	j.log.Info().Msg("code cleanup job started")

	go func() {
		defer close(j.stopped)
		j.cleanup()

		for {
			select {
			case <-j.ticker.C:
				j.cleanup()
			case <-j.done:
				j.log.Info().Msg("code cleanup job stopped")
				return
			}
		}
	}()
}

// Stop ends the job and waits for a running cleanup to finish
func (j *CodeCleanupJob) Stop() {
	j.ticker.Stop()
	close(j.done)
	<-j.stopped
}

func (j *CodeCleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cleared, err := j.users.ClearExpiredCodes(ctx, j.now())
	if err != nil {
		j.log.Error().Err(err).Msg("code cleanup failed")
		return
	}
	if cleared > 0 {
		j.log.Info().Int64("cleared", cleared).Msg("expired codes cleared")
	}
}
