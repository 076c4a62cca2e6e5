package scheduler

import (
	"github.com/movieranker/movieranker-backend/internal/app/service"
	"github.com/movieranker/movieranker-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// ResetCleanupScheduler periodically purges expired password reset tokens
type ResetCleanupScheduler struct {
	cron         *cron.Cron
	resetService service.PasswordResetService
}

func NewResetCleanupScheduler(resetService service.PasswordResetService) *ResetCleanupScheduler {
	return &ResetCleanupScheduler{
		cron:         cron.New(),
		resetService: resetService,
	}
}

func (s *ResetCleanupScheduler) Start() error {
	// Hourly, on the hour. Tokens expire after one hour, so anything
	// older than the previous run is dead weight.
	_, err := s.cron.AddFunc("0 * * * *", func() {
		purged, err := s.resetService.PurgeExpired()
		if err != nil {
			logger.Error("Failed to purge expired reset tokens", err)
			return
		}

		if purged > 0 {
			logger.Info("Purged expired reset tokens", map[string]interface{}{
				"count": purged,
			})
		}
	})

	if err != nil {
		logger.Error("Failed to add cron job for reset token cleanup", err)
		return err
	}

	s.cron.Start()
	logger.Info("Reset token cleanup scheduler started (hourly)", nil)

	return nil
}

func (s *ResetCleanupScheduler) Stop() {
	logger.Info("Stopping reset token cleanup scheduler...", nil)
	s.cron.Stop()
	logger.Info("Reset token cleanup scheduler stopped", nil)
}
