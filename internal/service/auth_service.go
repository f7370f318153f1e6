package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"careconnect-backend/internal/apperr"
	"careconnect-backend/internal/models"
	"careconnect-backend/internal/repository"
	"careconnect-backend/pkg/utils"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const (
	defaultCountryCode = "+91"
	minUsernameLength  = 3
	minPasswordLength  = 8
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgForgotPasswordSent = "If an account with that email exists, we have sent a password reset OTP."
	msgResetExpired       = "Session expired. Please request a new password reset."
)

type AuthService struct {
	userRepo     UserStore
	hospitalRepo HospitalStore
	providerRepo ProviderStore
	otp          *OTPService
	activity     *ActivityService
	now          Clock
}

func NewAuthService(
	userRepo UserStore,
	hospitalRepo HospitalStore,
	providerRepo ProviderStore,
	otp *OTPService,
	activity *ActivityService,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		hospitalRepo: hospitalRepo,
		providerRepo: providerRepo,
		otp:          otp,
		activity:     activity,
		now:          time.Now,
	}
}

// LoginResponse represents the response structure for login
type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
	Redirect     string       `json:"redirect"`
	Message      string       `json:"message"`
}

type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, Phone: u.Phone, Role: u.Role}
}

type SignupInput struct {
	Username        string
	Email           string
	Phone           string
	CountryCode     string
	Country         string
	Password        string
	ConfirmPassword string
	Role            string
}

// Signup validates every rule at once and reports all failures together
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*UserResponse, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	if in.CountryCode == "" {
		in.CountryCode = defaultCountryCode
	}
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	fullPhone := in.CountryCode + in.Phone

	var problems []string

	if len(in.Username) < minUsernameLength {
		problems = append(problems, "Username must be at least 3 characters")
	}
	if taken, err := s.userRepo.UsernameTaken(ctx, in.Username); err != nil {
		return nil, "", err
	} else if taken {
		problems = append(problems, "Username already taken")
	}

	if !emailPattern.MatchString(in.Email) {
		problems = append(problems, "Please enter a valid email address")
	}
	if taken, err := s.userRepo.EmailTaken(ctx, in.Email); err != nil {
		return nil, "", err
	} else if taken {
		problems = append(problems, "Email already registered")
	}

	if msg := validatePhone(in.CountryCode, in.Phone); msg != "" {
		problems = append(problems, msg)
	}
	if taken, err := s.userRepo.PhoneTaken(ctx, fullPhone); err != nil {
		return nil, "", err
	} else if taken {
		problems = append(problems, "Phone number already registered")
	}

	if len(in.Password) < minPasswordLength {
		problems = append(problems, "Password must be at least 8 characters")
	}
	if in.Password != in.ConfirmPassword {
		problems = append(problems, "Passwords do not match")
	}
	if !isSignupRole(in.Role) {
		problems = append(problems, "Please select a valid account type")
	}

	if len(problems) > 0 {
		return nil, "", apperr.Validation(problems...).WithInput(map[string]interface{}{
			"username": in.Username,
			"email":    in.Email,
			"phone":    in.Phone,
			"country":  in.Country,
			"role":     in.Role,
		})
	}

	passwordHash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		Phone:        fullPhone,
		Country:      in.Country,
		PasswordHash: passwordHash,
		Role:         in.Role,
		IsActive:     true,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	s.activity.Record(ctx, Actor{UserID: user.ID, Role: user.Role}, "signup", fmt.Sprintf("New %s account created", user.Role))

	message := "Account created successfully! Please login."
	if user.Role == models.RoleHospital || user.Role == models.RoleAmbulance {
		message = "Account created successfully! Please contact the administrator to assign you to a hospital/ambulance provider."
	}

	resp := toUserResponse(user)
	return &resp, message, nil
}

// Login authenticates by email and returns tokens plus the role landing page
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.Validation("Please enter both email and password")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			utils.BurnPasswordCheck(password)
			return nil, apperr.Unauthenticated(msgInvalidCredentials)
		}
		return nil, err
	}

	if !utils.ComparePassword(user.PasswordHash, password) {
		return nil, apperr.Unauthenticated(msgInvalidCredentials)
	}
	if !user.IsActive {
		return nil, apperr.Unauthenticated("Your account has been deactivated")
	}

	redirect, welcome, err := s.landingFor(ctx, user)
	if err != nil {
		return nil, err
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Hash and store refresh token
	refreshTokenModel := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: utils.HashRefreshToken(refreshToken),
		ExpiresAt: s.now().Add(utils.GetRefreshTokenExpiry()),
	}
	if err := s.userRepo.CreateRefreshToken(ctx, refreshTokenModel); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	s.activity.Record(ctx, Actor{UserID: user.ID, Role: user.Role}, "login", "User logged in")

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         toUserResponse(user),
		Redirect:     redirect,
		Message:      welcome,
	}, nil
}

// landingFor refuses provider admins that do not own a record yet
func (s *AuthService) landingFor(ctx context.Context, user *models.User) (string, string, error) {
	switch user.Role {
	case models.RoleHospital:
		hospital, err := s.hospitalRepo.GetHospitalByOwner(ctx, user.ID)
		if errors.Is(err, repository.ErrHospitalNotFound) {
			return "", "", apperr.Unauthenticated("You are not assigned to any hospital yet. Please contact the administrator.")
		}
		if err != nil {
			return "", "", err
		}
		return "/hospital/dashboard", fmt.Sprintf("Welcome back, %s!", hospital.Name), nil
	case models.RoleAmbulance:
		provider, err := s.providerRepo.GetProviderByOwner(ctx, user.ID)
		if errors.Is(err, repository.ErrProviderNotFound) {
			return "", "", apperr.Unauthenticated("You are not assigned to any ambulance provider yet. Please contact the administrator.")
		}
		if err != nil {
			return "", "", err
		}
		return "/ambulance/dashboard", fmt.Sprintf("Welcome back, %s!", provider.Name), nil
	default:
		return "/user/home", fmt.Sprintf("Welcome back, %s!", user.Username), nil
	}
}

// RefreshAccessToken generates a new access token from a refresh token
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	token, err := s.userRepo.FindRefreshTokenByHash(ctx, utils.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return "", apperr.Unauthenticated("invalid or revoked refresh token")
		}
		return "", err
	}

	if s.now().After(token.ExpiresAt) {
		return "", apperr.Unauthenticated("refresh token expired")
	}

	accessToken, err := utils.GenerateAccessToken(token.User.ID, token.User.Role)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes a refresh token and records the sign-out when the
// session belonged to a known user
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := utils.HashRefreshToken(refreshToken)

	token, err := s.userRepo.FindRefreshTokenByHash(ctx, tokenHash)
	if err != nil && !errors.Is(err, repository.ErrTokenNotFound) {
		return err
	}

	if err := s.userRepo.RevokeRefreshTokenByHash(ctx, tokenHash); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	if token != nil {
		s.activity.Record(ctx, Actor{UserID: token.User.ID, Role: token.User.Role}, "logout", "User logged out")
	}
	return nil
}

// CheckUsername reports whether a username can still be registered
func (s *AuthService) CheckUsername(ctx context.Context, username string) (bool, string, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLength {
		return false, "Username must be at least 3 characters", nil
	}
	taken, err := s.userRepo.UsernameTaken(ctx, username)
	if err != nil {
		return false, "", err
	}
	if taken {
		return false, "Username already taken", nil
	}
	return true, "Username is available", nil
}

// SendSignupEmailOTP issues a verification code for an unregistered email
func (s *AuthService) SendSignupEmailOTP(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return apperr.Validation("Invalid email format")
	}
	taken, err := s.userRepo.EmailTaken(ctx, email)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Validation("Email already registered")
	}
	return s.otp.Issue(ctx, models.OTPChannelEmail, email, models.PurposeEmailVerification)
}

func (s *AuthService) VerifySignupEmailOTP(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.otp.Verify(ctx, models.OTPChannelEmail, email, models.PurposeEmailVerification, strings.TrimSpace(code))
}

// SendSignupPhoneOTP issues a verification code for an unregistered phone.
// Phone codes share the verification purpose with email codes.
func (s *AuthService) SendSignupPhoneOTP(ctx context.Context, countryCode, phone string) error {
	if countryCode == "" {
		countryCode = defaultCountryCode
	}
	phone = strings.TrimSpace(phone)
	if msg := validatePhone(countryCode, phone); msg != "" {
		return apperr.Validation(msg)
	}
	fullPhone := countryCode + phone
	taken, err := s.userRepo.PhoneTaken(ctx, fullPhone)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Validation("Phone number already registered")
	}
	return s.otp.Issue(ctx, models.OTPChannelPhone, fullPhone, models.PurposeEmailVerification)
}

func (s *AuthService) VerifySignupPhoneOTP(ctx context.Context, countryCode, phone, code string) error {
	if countryCode == "" {
		countryCode = defaultCountryCode
	}
	fullPhone := countryCode + strings.TrimSpace(phone)
	return s.otp.Verify(ctx, models.OTPChannelPhone, fullPhone, models.PurposeEmailVerification, strings.TrimSpace(code))
}

// ForgotPassword sends a reset code when the email belongs to an account.
// The returned message is the same either way.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return "", apperr.Validation("Please enter a valid email address")
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return msgForgotPasswordSent, nil
		}
		return "", err
	}

	if err := s.otp.Issue(ctx, models.OTPChannelEmail, email, models.PurposePasswordReset); err != nil {
		return "", err
	}
	return msgForgotPasswordSent, nil
}

// VerifyPasswordResetOTP exchanges a valid reset code for a reset token
func (s *AuthService) VerifyPasswordResetOTP(ctx context.Context, email, code string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)
	if code == "" {
		return "", apperr.Validation("Please enter the OTP")
	}

	if err := s.otp.Verify(ctx, models.OTPChannelEmail, email, models.PurposePasswordReset, code); err != nil {
		if apperr.Is(err, apperr.KindValidation) && err.Error() == msgInvalidOTP {
			return "", apperr.Validation("Invalid OTP. Please check and try again.")
		}
		return "", err
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", apperr.NotFound("User not found")
		}
		return "", err
	}

	token, err := utils.GenerateResetToken(user.ID, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return token, nil
}

// ResetPassword sets a new password and signs the user out everywhere
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, password, confirmPassword string) error {
	claims, err := utils.ValidateResetToken(resetToken)
	if err != nil {
		return apperr.Unauthenticated(msgResetExpired)
	}

	if len(password) < minPasswordLength {
		return apperr.Validation("Password must be at least 8 characters")
	}
	if password != confirmPassword {
		return apperr.Validation("Passwords do not match")
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperr.NotFound("User not found")
		}
		return err
	}
	// a token is spent once the password it was issued against changes
	if claims.Stamp != utils.PasswordStamp(user.PasswordHash) {
		return apperr.Unauthenticated(msgResetExpired)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.userRepo.RevokeAllRefreshTokens(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	s.activity.Record(ctx, Actor{UserID: user.ID, Role: user.Role}, "password_reset", "Password reset successfully")
	return nil
}

// validatePhone returns a message when phone is unacceptable for countryCode
func validatePhone(countryCode, phone string) string {
	if countryCode == defaultCountryCode {
		if len(phone) != 10 || !isDigits(phone) {
			return "Phone number must be exactly 10 digits for India"
		}
		return ""
	}
	if len(phone) < 10 || !isDigits(phone) {
		return "Please enter a valid phone number"
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isSignupRole(role string) bool {
	for _, r := range models.SignupRoles {
		if r == role {
			return true
		}
	}
	return false
}
