package service

import (
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/movieranker/movieranker-backend/internal/app/model"
	"github.com/movieranker/movieranker-backend/internal/app/repository"
	"github.com/movieranker/movieranker-backend/internal/db"
	"github.com/movieranker/movieranker-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

// fakeSender records outgoing mail. Safe for concurrent sends.
type fakeSender struct {
	mu   sync.Mutex
	sent []sentEmail
	fail bool
}

func (f *fakeSender) Send(to, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp connection refused")
	}
	f.sent = append(f.sent, sentEmail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSender) lastSent() (sentEmail, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return sentEmail{}, false
	}
	return f.sent[len(f.sent)-1], true
}

var resetLinkPattern = regexp.MustCompile(`token=([A-Za-z0-9_-]+)`)

func setupResetServiceTest(t *testing.T) (PasswordResetService, *fakeSender, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	sender := &fakeSender{}
	resetService := NewPasswordResetService(
		repository.NewPasswordResetRepository(testDB),
		repository.NewUserRepository(testDB),
		sender,
		util.ValidatePasswordStrength,
		"http://localhost:3000",
	)

	return resetService, sender, testDB
}

func registerResetTestUser(t *testing.T, testDB *gorm.DB, email, password string) *model.User {
	hash, err := util.HashPassword(password)
	require.NoError(t, err)

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         "Reset User",
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

// requestToken runs RequestReset and pulls the issued token back out of the
// emailed link, the same way a real user would
func requestToken(t *testing.T, resetService PasswordResetService, sender *fakeSender, email string) string {
	require.NoError(t, resetService.RequestReset(email))

	mail, ok := sender.lastSent()
	require.True(t, ok)
	require.Equal(t, email, mail.To)

	match := resetLinkPattern.FindStringSubmatch(mail.Body)
	require.Len(t, match, 2)
	return match[1]
}

func TestPasswordResetService_RequestReset(t *testing.T) {
	resetService, sender, testDB := setupResetServiceTest(t)
	user := registerResetTestUser(t, testDB, "reset@example.com", "oldpass123")

	token := requestToken(t, resetService, sender, "reset@example.com")
	assert.NotEmpty(t, token)

	// Token persisted, bound to the user, unused, one hour of validity
	var record model.PasswordReset
	require.NoError(t, testDB.Where("token = ?", token).First(&record).Error)
	assert.Equal(t, user.ID, record.UserID)
	assert.False(t, record.Used)
	assert.WithinDuration(t, time.Now().Add(ResetTokenExpiry), record.ExpiresAt, time.Minute)
}

func TestPasswordResetService_RequestReset_UnknownEmail(t *testing.T) {
	resetService, sender, testDB := setupResetServiceTest(t)

	// Same success-shaped outcome as a known email, and no mail goes out
	err := resetService.RequestReset("nobody@example.com")
	require.NoError(t, err)
	assert.Zero(t, sender.sentCount())

	// No token row either
	var count int64
	require.NoError(t, testDB.Model(&model.PasswordReset{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPasswordResetService_RequestReset_DeliveryFailure(t *testing.T) {
	resetService, sender, testDB := setupResetServiceTest(t)
	registerResetTestUser(t, testDB, "reset@example.com", "oldpass123")

	sender.fail = true
	err := resetService.RequestReset("reset@example.com")
	assert.ErrorIs(t, err, ErrEmailDelivery)

	// The token row stays; only delivery failed
	var count int64
	require.NoError(t, testDB.Model(&model.PasswordReset{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPasswordResetService_ResetPassword(t *testing.T) {
	resetService, sender, testDB := setupResetServiceTest(t)
	user := registerResetTestUser(t, testDB, "reset@example.com", "oldpass123")

	token := requestToken(t, resetService, sender, "reset@example.com")

	require.NoError(t, resetService.ResetPassword("reset@example.com", token, "newpass456"))

	// The stored hash verifies against the new password only
	var reloaded model.User
	require.NoError(t, testDB.First(&reloaded, user.ID).Error)
	assert.True(t, util.VerifyPassword(reloaded.PasswordHash, "newpass456"))
	assert.False(t, util.VerifyPassword(reloaded.PasswordHash, "oldpass123"))

	// A confirmation email followed
	mail, ok := sender.lastSent()
	require.True(t, ok)
	assert.Equal(t, "Password Changed", mail.Subject)
}

func TestPasswordResetService_ResetPassword_Rejections(t *testing.T) {
	resetService, sender, testDB := setupResetServiceTest(t)
	registerResetTestUser(t, testDB, "reset@example.com", "oldpass123")

	token := requestToken(t, resetService, sender, "reset@example.com")

	t.Run("Weak new password", func(t *testing.T) {
		err := resetService.ResetPassword("reset@example.com", token, "short")
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Fields, "newPassword")
	})

	t.Run("Unknown email", func(t *testing.T) {
		err := resetService.ResetPassword("nobody@example.com", token, "newpass456")
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})

	t.Run("Foreign token", func(t *testing.T) {
		err := resetService.ResetPassword("reset@example.com", "not-a-real-token", "newpass456")
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})

	t.Run("Consumed token", func(t *testing.T) {
		require.NoError(t, resetService.ResetPassword("reset@example.com", token, "newpass456"))

		err := resetService.ResetPassword("reset@example.com", token, "otherpass789")
		assert.ErrorIs(t, err, ErrInvalidResetToken)

		// The password from the failed second attempt did not stick
		var user model.User
		require.NoError(t, testDB.Where("email = ?", "reset@example.com").First(&user).Error)
		assert.True(t, util.VerifyPassword(user.PasswordHash, "newpass456"))
	})
}

func TestPasswordResetService_ResetPassword_ExpiredToken(t *testing.T) {
	resetService, sender, testDB := setupResetServiceTest(t)
	registerResetTestUser(t, testDB, "reset@example.com", "oldpass123")

	token := requestToken(t, resetService, sender, "reset@example.com")

	// Age the token past its window
	require.NoError(t, testDB.Model(&model.PasswordReset{}).
		Where("token = ?", token).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	err := resetService.ResetPassword("reset@example.com", token, "newpass456")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestPasswordResetService_ResetPassword_ConcurrentAttempts(t *testing.T) {
	resetService, sender, testDB := setupResetServiceTest(t)
	registerResetTestUser(t, testDB, "reset@example.com", "oldpass123")

	token := requestToken(t, resetService, sender, "reset@example.com")

	const attempts = 8
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- resetService.ResetPassword("reset@example.com", token, "newpass456")
		}()
	}
	wg.Wait()
	close(results)

	// Exactly one attempt may consume the token
	var successes, rejections int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrInvalidResetToken):
			rejections++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, rejections)
}

func TestPasswordResetService_PurgeExpired(t *testing.T) {
	resetService, sender, testDB := setupResetServiceTest(t)
	registerResetTestUser(t, testDB, "reset@example.com", "oldpass123")

	live := requestToken(t, resetService, sender, "reset@example.com")
	stale := requestToken(t, resetService, sender, "reset@example.com")

	require.NoError(t, testDB.Model(&model.PasswordReset{}).
		Where("token = ?", stale).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	purged, err := resetService.PurgeExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	var remaining model.PasswordReset
	require.NoError(t, testDB.First(&remaining).Error)
	assert.Equal(t, live, remaining.Token)
}
