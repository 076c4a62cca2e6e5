package repository

import (
	"time"

	"github.com/movieranker/movieranker-backend/internal/app/model"
	"github.com/movieranker/movieranker-backend/pkg/logger"
	"gorm.io/gorm"
)

type PasswordResetRepository interface {
	Create(reset *model.PasswordReset) error
	// Consume atomically marks the token used. It succeeds at most once per
	// token: the conditional update only matches an unused, unexpired token
	// bound to the given user.
	Consume(userID uint, token string, now time.Time) (bool, error)
	DeleteExpired() (int64, error)
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(reset *model.PasswordReset) error {
	logger.Debug("Creating password reset in database", map[string]interface{}{
		"user_id": reset.UserID,
	})

	if err := r.db.Create(reset).Error; err != nil {
		logger.Error("Failed to create password reset in database", err, map[string]interface{}{
			"user_id": reset.UserID,
		})
		return err
	}

	logger.Debug("Password reset created in database", map[string]interface{}{
		"id":      reset.ID,
		"user_id": reset.UserID,
	})
	return nil
}

func (r *passwordResetRepository) Consume(userID uint, token string, now time.Time) (bool, error) {
	logger.Debug("Consuming password reset token", map[string]interface{}{
		"user_id": userID,
	})

	// Single conditional UPDATE so two concurrent resets cannot both win.
	// A read-check-then-write here would race.
	result := r.db.Model(&model.PasswordReset{}).
		Where("user_id = ? AND token = ? AND used = ? AND expires_at > ?", userID, token, false, now).
		Update("used", true)
	if result.Error != nil {
		logger.Error("Failed to consume password reset token", result.Error, map[string]interface{}{
			"user_id": userID,
		})
		return false, result.Error
	}

	consumed := result.RowsAffected == 1
	logger.Debug("Password reset token consume attempt finished", map[string]interface{}{
		"user_id":  userID,
		"consumed": consumed,
	})
	return consumed, nil
}

func (r *passwordResetRepository) DeleteExpired() (int64, error) {
	logger.Debug("Deleting expired password resets from database")

	result := r.db.Where("expires_at < ?", time.Now()).Delete(&model.PasswordReset{})
	if result.Error != nil {
		logger.Error("Failed to delete expired password resets from database", result.Error, nil)
		return 0, result.Error
	}

	logger.Debug("Expired password resets deleted from database", map[string]interface{}{
		"count": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
