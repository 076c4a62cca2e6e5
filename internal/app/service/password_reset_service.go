package service

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/movieranker/movieranker-backend/internal/app/model"
	"github.com/movieranker/movieranker-backend/internal/app/repository"
	"github.com/movieranker/movieranker-backend/pkg/logger"
	"github.com/movieranker/movieranker-backend/pkg/mailer"
	"github.com/movieranker/movieranker-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	// ErrInvalidResetToken covers every rejection: unknown email, foreign
	// token, already consumed, expired. The caller must not be able to tell
	// which.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	// ErrEmailDelivery means the token was issued but the email could not be
	// sent. The state change stands; the caller shows a warning.
	ErrEmailDelivery = errors.New("reset email could not be delivered")
)

// ResetTokenExpiry is the window in which a reset token stays valid
const ResetTokenExpiry = 1 * time.Hour

// PasswordValidator checks new-password complexity. The rules are the
// caller's to configure.
type PasswordValidator func(password string) error

type PasswordResetService interface {
	RequestReset(email string) error
	ResetPassword(email, token, newPassword string) error
	PurgeExpired() (int64, error)
}

type passwordResetService struct {
	resetRepo        repository.PasswordResetRepository
	userRepo         repository.UserRepository
	sender           mailer.Sender
	validatePassword PasswordValidator
	appBaseURL       string
}

func NewPasswordResetService(
	resetRepo repository.PasswordResetRepository,
	userRepo repository.UserRepository,
	sender mailer.Sender,
	validatePassword PasswordValidator,
	appBaseURL string,
) PasswordResetService {
	return &passwordResetService{
		resetRepo:        resetRepo,
		userRepo:         userRepo,
		sender:           sender,
		validatePassword: validatePassword,
		appBaseURL:       appBaseURL,
	}
}

// RequestReset issues a reset token and emails a link. Whether or not the
// email resolves to an account, the outward result is the same so callers
// cannot enumerate users.
func (s *passwordResetService) RequestReset(email string) error {
	logger.Info("Processing password reset request")

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Password reset requested for non-existent email")
			// Success-shaped: no token, no email, same outcome for the caller
			return nil
		}
		logger.Error("Failed to find user for password reset", err)
		return err
	}

	token, err := util.GenerateResetToken()
	if err != nil {
		logger.Error("Failed to generate reset token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	reset := &model.PasswordReset{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: time.Now().Add(ResetTokenExpiry),
		Used:      false,
	}

	if err := s.resetRepo.Create(reset); err != nil {
		logger.Error("Failed to create password reset record", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	resetLink := fmt.Sprintf(
		"%s/reset-password?email=%s&token=%s",
		s.appBaseURL, url.QueryEscape(user.Email), token,
	)
	body := fmt.Sprintf(
		`<p>Please reset your password by clicking here: <a href="%s">link</a></p>
<p>The link is valid for one hour. If you did not request this, you can ignore this email.</p>`,
		resetLink,
	)

	if err := s.sender.Send(user.Email, "Reset Password", body); err != nil {
		logger.Error("Failed to send password reset email", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return ErrEmailDelivery
	}

	logger.Info("Password reset email sent", map[string]interface{}{
		"user_id":    user.ID,
		"expires_at": reset.ExpiresAt,
	})
	return nil
}

// ResetPassword consumes a token and stores a new credential hash. The token
// transitions to used exactly once; concurrent attempts lose with
// ErrInvalidResetToken.
func (s *passwordResetService) ResetPassword(email, token, newPassword string) error {
	logger.Info("Processing password reset with token")

	if err := s.validatePassword(newPassword); err != nil {
		logger.Warn("Password reset rejected: weak password")
		return &ValidationError{Fields: map[string]string{"newPassword": err.Error()}}
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same generic failure as a bad token
			logger.Warn("Password reset attempted for non-existent email")
			return ErrInvalidResetToken
		}
		logger.Error("Failed to find user for password reset", err)
		return err
	}

	// The consume is a single conditional update; it is the only point that
	// decides the race between concurrent resets of the same token
	consumed, err := s.resetRepo.Consume(user.ID, token, time.Now())
	if err != nil {
		logger.Error("Failed to consume reset token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	if !consumed {
		logger.Warn("Reset token rejected", map[string]interface{}{
			"user_id": user.ID,
		})
		return ErrInvalidResetToken
	}

	hashedPassword, err := util.HashPassword(newPassword)
	if err != nil {
		logger.Error("Failed to hash new password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	if err := s.userRepo.UpdatePasswordHash(user.ID, hashedPassword); err != nil {
		logger.Error("Failed to update user password", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}

	// Confirmation is best-effort: the credential change already succeeded
	if err := s.sender.Send(user.Email, "Password Changed",
		"<p>Your password has been changed successfully.</p>"); err != nil {
		logger.Warn("Failed to send password change confirmation", map[string]interface{}{
			"user_id": user.ID,
			"error":   err.Error(),
		})
	}

	logger.Info("Password reset successful", map[string]interface{}{
		"user_id": user.ID,
	})
	return nil
}

// PurgeExpired removes reset rows past their expiry window
func (s *passwordResetService) PurgeExpired() (int64, error) {
	return s.resetRepo.DeleteExpired()
}
