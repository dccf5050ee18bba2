package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mercato-api/internal/config"
	"github.com/mercato-api/internal/constants"
	"github.com/mercato-api/internal/models"
	"github.com/mercato-api/internal/repository"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestRegisterWithVerifyCode(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	code := seedAuthTestVerifyCode(t, db, "new.user@example.com", constants.VerifyPurposeRegister, "123456", time.Now(), time.Now().Add(10*time.Minute), 0)

	user, token, _, err := svc.Register(RegisterInput{
		Email:    "New.User@example.com",
		Password: "passw0rd1",
		Code:     "123456",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "new.user@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.DisplayName != "new.user" {
		t.Fatalf("expected display name from email, got %s", user.DisplayName)
	}
	if user.EmailVerifiedAt == nil {
		t.Fatalf("expected email verified at set")
	}

	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	var reloaded models.EmailVerifyCode
	if err := db.First(&reloaded, code.ID).Error; err != nil {
		t.Fatalf("reload verify code failed: %v", err)
	}
	if reloaded.VerifiedAt == nil {
		t.Fatalf("expected verify code marked verified")
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, _ := setupUserAuthServiceTest(t)

	for _, password := range []string{"short1", "abcdefgh", "12345678"} {
		_, _, _, err := svc.Register(RegisterInput{
			Email:    "weak@example.com",
			Password: password,
			Code:     "123456",
		})
		if !errors.Is(err, ErrPasswordTooWeak) {
			t.Fatalf("password %q: expected ErrPasswordTooWeak, got %v", password, err)
		}
	}
}

func TestRegisterRejectsWrongCode(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	code := seedAuthTestVerifyCode(t, db, "wrong@example.com", constants.VerifyPurposeRegister, "111111", time.Now(), time.Now().Add(10*time.Minute), 0)

	_, _, _, err := svc.Register(RegisterInput{
		Email:    "wrong@example.com",
		Password: "passw0rd1",
		Code:     "222222",
	})
	if !errors.Is(err, ErrVerifyCodeInvalid) {
		t.Fatalf("expected ErrVerifyCodeInvalid, got %v", err)
	}

	var reloaded models.EmailVerifyCode
	if err := db.First(&reloaded, code.ID).Error; err != nil {
		t.Fatalf("reload verify code failed: %v", err)
	}
	if reloaded.AttemptCount != 1 {
		t.Fatalf("expected attempt count 1, got %d", reloaded.AttemptCount)
	}
}

func TestRegisterRejectsExpiredCode(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	seedAuthTestVerifyCode(t, db, "expired@example.com", constants.VerifyPurposeRegister, "123456", time.Now().Add(-20*time.Minute), time.Now().Add(-10*time.Minute), 0)

	_, _, _, err := svc.Register(RegisterInput{
		Email:    "expired@example.com",
		Password: "passw0rd1",
		Code:     "123456",
	})
	if !errors.Is(err, ErrVerifyCodeExpired) {
		t.Fatalf("expected ErrVerifyCodeExpired, got %v", err)
	}
}

func TestRegisterRejectsAfterTooManyAttempts(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	seedAuthTestVerifyCode(t, db, "locked@example.com", constants.VerifyPurposeRegister, "123456", time.Now(), time.Now().Add(10*time.Minute), 3)

	_, _, _, err := svc.Register(RegisterInput{
		Email:    "locked@example.com",
		Password: "passw0rd1",
		Code:     "123456",
	})
	if !errors.Is(err, ErrVerifyCodeAttemptsExceeded) {
		t.Fatalf("expected ErrVerifyCodeAttemptsExceeded, got %v", err)
	}
}

func TestSendVerifyCodeGuards(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	if err := svc.SendVerifyCode("not-an-email", constants.VerifyPurposeRegister); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if err := svc.SendVerifyCode("someone@example.com", "unknown"); !errors.Is(err, ErrInvalidVerifyPurpose) {
		t.Fatalf("expected ErrInvalidVerifyPurpose, got %v", err)
	}
	if err := svc.SendVerifyCode("nobody@example.com", constants.VerifyPurposeReset); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for reset of unknown email, got %v", err)
	}

	createAuthTestUser(t, db, "taken@example.com", "passw0rd1", constants.UserStatusActive, true)
	if err := svc.SendVerifyCode("taken@example.com", constants.VerifyPurposeRegister); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestSendVerifyCodeThrottle(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	seedAuthTestVerifyCode(t, db, "fresh@example.com", constants.VerifyPurposeRegister, "123456", time.Now(), time.Now().Add(10*time.Minute), 0)

	if err := svc.SendVerifyCode("fresh@example.com", constants.VerifyPurposeRegister); !errors.Is(err, ErrVerifyCodeTooFrequent) {
		t.Fatalf("expected ErrVerifyCodeTooFrequent, got %v", err)
	}
}

func TestSendVerifyCodeFailsWhenEmailDisabled(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	if err := svc.SendVerifyCode("disabled@example.com", constants.VerifyPurposeRegister); !errors.Is(err, ErrEmailServiceDisabled) {
		t.Fatalf("expected ErrEmailServiceDisabled, got %v", err)
	}

	// 发送失败不落验证码记录
	var count int64
	if err := db.Model(&models.EmailVerifyCode{}).Where("email = ?", "disabled@example.com").Count(&count).Error; err != nil {
		t.Fatalf("count verify codes failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no verify code rows, got %d", count)
	}
}

func TestLogin(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	user := createAuthTestUser(t, db, "login@example.com", "passw0rd1", constants.UserStatusActive, true)

	loggedIn, token, _, err := svc.Login("login@example.com", "passw0rd1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loggedIn.ID != user.ID || token == "" {
		t.Fatalf("unexpected login result: id=%d token=%q", loggedIn.ID, token)
	}
	if loggedIn.LastLoginAt == nil {
		t.Fatalf("expected last login at set")
	}

	if _, _, _, err := svc.Login("login@example.com", "wrong-pass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, _, err := svc.Login("unknown@example.com", "passw0rd1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	createAuthTestUser(t, db, "blocked@example.com", "passw0rd1", constants.UserStatusBlocked, true)
	if _, _, _, err := svc.Login("blocked@example.com", "passw0rd1"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected ErrUserDisabled, got %v", err)
	}

	createAuthTestUser(t, db, "unverified@example.com", "passw0rd1", constants.UserStatusActive, false)
	if _, _, _, err := svc.Login("unverified@example.com", "passw0rd1"); !errors.Is(err, ErrEmailNotVerified) {
		t.Fatalf("expected ErrEmailNotVerified, got %v", err)
	}
}

func TestResetPassword(t *testing.T) {
	svc, db := setupUserAuthServiceTest(t)

	createAuthTestUser(t, db, "reset@example.com", "passw0rd1", constants.UserStatusActive, true)
	seedAuthTestVerifyCode(t, db, "reset@example.com", constants.VerifyPurposeReset, "654321", time.Now(), time.Now().Add(10*time.Minute), 0)

	if err := svc.ResetPassword("reset@example.com", "654321", "newpassw0rd"); err != nil {
		t.Fatalf("reset password failed: %v", err)
	}

	if _, _, _, err := svc.Login("reset@example.com", "newpassw0rd"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if _, _, _, err := svc.Login("reset@example.com", "passw0rd1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password rejected, got %v", err)
	}

	if err := svc.ResetPassword("unknown@example.com", "654321", "newpassw0rd"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown email, got %v", err)
	}
}

func setupUserAuthServiceTest(t *testing.T) (*UserAuthService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:user_auth_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.EmailVerifyCode{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.UserJWT = config.JWTConfig{SecretKey: "unit-test-secret-key-0123456789abcdef", ExpireHours: 1}
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{MinLength: 8, RequireNumber: true, RequireLetter: true}
	cfg.Email.VerifyCode = config.VerifyCodeConfig{ExpireMinutes: 10, SendIntervalSeconds: 60, MaxAttempts: 3, Length: 6}

	userRepo := repository.NewUserRepository(db)
	codeRepo := repository.NewEmailVerifyCodeRepository(db)
	return NewUserAuthService(cfg, userRepo, codeRepo, NewEmailService(&cfg.Email)), db
}

func seedAuthTestVerifyCode(t *testing.T, db *gorm.DB, email, purpose, code string, sentAt, expiresAt time.Time, attempts int) models.EmailVerifyCode {
	t.Helper()

	row := models.EmailVerifyCode{
		Email:        email,
		Purpose:      purpose,
		CodeHash:     hashVerifyCode(code),
		ExpiresAt:    expiresAt,
		AttemptCount: attempts,
		SentAt:       sentAt,
		CreatedAt:    sentAt,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create verify code failed: %v", err)
	}
	return row
}

func createAuthTestUser(t *testing.T, db *gorm.DB, email, password, status string, verified bool) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	row := models.User{
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  "tester",
		Status:       status,
	}
	if verified {
		now := time.Now()
		row.EmailVerifiedAt = &now
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return row
}
