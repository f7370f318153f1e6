package service

import (
	"context"
	"testing"
	"time"

	"careconnect-backend/internal/apperr"
	"careconnect-backend/internal/models"
	"careconnect-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	w      *world
	svc    *AuthService
	otps   fakeOTPs
	mailer *recordingSender
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	utils.InitJWT("access-test", "refresh-test", 15*time.Minute, 24*time.Hour)
	utils.InitResetToken("reset-test", 15*time.Minute)

	w := newWorld()
	otps := fakeOTPs{w}
	mailer := &recordingSender{}
	activity := NewActivityService(fakeActivity{w})
	otp := NewOTPService(otps, mailer, &recordingSender{}, nil)
	svc := NewAuthService(fakeUsers{w}, fakeHospitals{w}, fakeProviders{w}, otp, activity)
	return &authFixture{w: w, svc: svc, otps: otps, mailer: mailer}
}

func (f *authFixture) addUser(t *testing.T, u models.User, password string) *models.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	u.PasswordHash = hash
	u.IsActive = true
	require.NoError(t, fakeUsers{f.w}.CreateUser(context.Background(), &u))
	return &u
}

func TestSignupCollectsEveryProblem(t *testing.T) {
	f := newAuthFixture(t)
	f.w.users[1] = &models.User{ID: 1, Username: "asha", Email: "asha@example.com", Phone: "+919876543210"}

	_, _, err := f.svc.Signup(context.Background(), SignupInput{
		Username:        "asha",
		Email:           "not-an-email",
		Phone:           "98765",
		Password:        "short",
		ConfirmPassword: "different",
		Role:            models.RoleSuperuser,
	})
	require.Error(t, err)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, []string{
		"Username already taken",
		"Please enter a valid email address",
		"Phone number must be exactly 10 digits for India",
		"Password must be at least 8 characters",
		"Passwords do not match",
		"Please select a valid account type",
	}, appErr.Messages)
	assert.Equal(t, "not-an-email", appErr.Input["email"])
	assert.Empty(t, f.w.actions())
}

func TestSignupProviderAdminMessage(t *testing.T) {
	f := newAuthFixture(t)

	user, msg, err := f.svc.Signup(context.Background(), SignupInput{
		Username:        "citycare",
		Email:           "Ops@CityCare.in",
		Phone:           "9876543210",
		Password:        "password123",
		ConfirmPassword: "password123",
		Role:            models.RoleAmbulance,
	})
	require.NoError(t, err)
	assert.Equal(t, "ops@citycare.in", user.Email)
	assert.Equal(t, "+919876543210", user.Phone)
	assert.Contains(t, msg, "contact the administrator")
	assert.Equal(t, []string{"signup"}, f.w.actions())
}

func TestLoginRedirectsByRole(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	admin := f.addUser(t, models.User{Username: "lila", Email: "admin@lila.in", Role: models.RoleHospital}, "password123")

	_, err := f.svc.Login(ctx, "admin@lila.in", "password123")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "not assigned to any hospital")

	f.w.addHospital(models.Hospital{Name: "Lilavati", OwnerID: &admin.ID})
	resp, err := f.svc.Login(ctx, " ADMIN@lila.in ", "password123")
	require.NoError(t, err)
	assert.Equal(t, "/hospital/dashboard", resp.Redirect)
	assert.Equal(t, "Welcome back, Lilavati!", resp.Message)
	assert.NotEmpty(t, resp.AccessToken)

	claims, err := utils.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, models.RoleHospital, claims.Role)

	_, err = f.svc.Login(ctx, "admin@lila.in", "wrong-password")
	assert.Equal(t, msgInvalidCredentials, err.Error())
}

func TestForgotPasswordDoesNotRevealAccounts(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, fakeUsers{f.w}.CreateUser(ctx, &models.User{Username: "asha", Email: "asha@example.com", IsActive: true}))

	msg, err := f.svc.ForgotPassword(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Equal(t, msgForgotPasswordSent, msg)
	assert.Empty(t, f.mailer.sent)

	msg, err = f.svc.ForgotPassword(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, msgForgotPasswordSent, msg)
	assert.Len(t, f.mailer.sent, 1)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.addUser(t, models.User{Username: "asha", Email: "asha@example.com", Role: models.RoleUser}, "old-password")
	require.NoError(t, fakeUsers{f.w}.CreateRefreshToken(ctx, &models.RefreshToken{UserID: user.ID, TokenHash: "h", ExpiresAt: time.Now().Add(time.Hour)}))

	_, err := f.svc.ForgotPassword(ctx, "asha@example.com")
	require.NoError(t, err)
	code := f.otps.pending()[0].Code

	_, err = f.svc.VerifyPasswordResetOTP(ctx, "asha@example.com", "000000")
	assert.Equal(t, "Invalid OTP. Please check and try again.", err.Error())

	token, err := f.svc.VerifyPasswordResetOTP(ctx, "asha@example.com", code)
	require.NoError(t, err)

	err = f.svc.ResetPassword(ctx, token, "new-password", "mismatch")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, f.svc.ResetPassword(ctx, token, "new-password", "new-password"))
	stored, _ := fakeUsers{f.w}.FindByID(ctx, user.ID)
	assert.True(t, utils.ComparePassword(stored.PasswordHash, "new-password"))

	_, err = fakeUsers{f.w}.FindRefreshTokenByHash(ctx, "h")
	assert.Error(t, err, "sessions are revoked")
	assert.Contains(t, f.w.actions(), "password_reset")

	// the same token cannot be spent twice
	err = f.svc.ResetPassword(ctx, token, "another-password", "another-password")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	assert.Equal(t, msgResetExpired, err.Error())
	stored, _ = fakeUsers{f.w}.FindByID(ctx, user.ID)
	assert.True(t, utils.ComparePassword(stored.PasswordHash, "new-password"))
}

func TestCheckUsername(t *testing.T) {
	f := newAuthFixture(t)
	f.w.users[1] = &models.User{ID: 1, Username: "asha"}

	ok, msg, err := f.svc.CheckUsername(context.Background(), "as")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Username must be at least 3 characters", msg)

	ok, _, _ = f.svc.CheckUsername(context.Background(), "asha")
	assert.False(t, ok)

	ok, _, _ = f.svc.CheckUsername(context.Background(), "ravi")
	assert.True(t, ok)
}

func TestSignupPhoneOTP(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	err := f.svc.SendSignupPhoneOTP(ctx, "+1", "555")
	assert.Equal(t, "Please enter a valid phone number", err.Error())

	require.NoError(t, f.svc.SendSignupPhoneOTP(ctx, "", "9876543210"))
	pending := f.otps.pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "+919876543210", pending[0].Contact)
	assert.Equal(t, models.PurposeEmailVerification, pending[0].Purpose)

	require.NoError(t, f.svc.VerifySignupPhoneOTP(ctx, "+91", "9876543210", pending[0].Code))
}

func TestValidatePhone(t *testing.T) {
	assert.Empty(t, validatePhone("+91", "9876543210"))
	assert.NotEmpty(t, validatePhone("+91", "98765432101"))
	assert.NotEmpty(t, validatePhone("+91", "98765abcde"))
	assert.Empty(t, validatePhone("+44", "2071234567"))
	assert.NotEmpty(t, validatePhone("+44", "207123"))
}
