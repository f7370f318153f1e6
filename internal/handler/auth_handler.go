package handler

import (
	"net/http"

	"careconnect-backend/internal/service"
	"careconnect-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	refreshCookie = "refresh_token"
	resetCookie   = "reset_token"
)

type AuthHandler struct {
	authService   *service.AuthService
	secureCookies bool
}

func NewAuthHandler(authService *service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
	}
}

type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	CountryCode     string `json:"country_code"`
	Country         string `json:"country"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Role            string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type EmailOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type PhoneOTPRequest struct {
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
	OTP         string `json:"otp"`
}

type ResetPasswordRequest struct {
	ResetToken      string `json:"reset_token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Signup registers a general user or a provider admin account
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, message, err := h.authService.Signup(c.Request.Context(), service.SignupInput{
		Username:        req.Username,
		Email:           req.Email,
		Phone:           req.Phone,
		CountryCode:     req.CountryCode,
		Country:         req.Country,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Role:            req.Role,
	})
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}

	utils.DataMessageResponse(c, http.StatusCreated, message, gin.H{
		"user":     user,
		"redirect": "/auth/login",
	})
}

// Login handles user authentication
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, "Failed to login")
		return
	}

	// Set refresh token as HttpOnly cookie
	c.SetCookie(
		refreshCookie,
		response.RefreshToken,
		int(utils.GetRefreshTokenExpiry().Seconds()),
		"/",
		"",
		h.secureCookies,
		true,
	)

	utils.DataMessageResponse(c, http.StatusOK, response.Message, gin.H{
		"access_token": response.AccessToken,
		"user":         response.User,
		"redirect":     response.Redirect,
	})
}

// Refresh generates a new access token from refresh token
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookie)
	if err != nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Refresh token not found")
		return
	}

	accessToken, err := h.authService.RefreshAccessToken(c.Request.Context(), refreshToken)
	if err != nil {
		respondError(c, err, "Failed to refresh session")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"access_token": accessToken,
	})
}

// Logout revokes the refresh token
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookie)
	if err == nil {
		if err := h.authService.Logout(c.Request.Context(), refreshToken); err != nil {
			respondError(c, err, "Failed to logout")
			return
		}
	}

	c.SetCookie(refreshCookie, "", -1, "/", "", h.secureCookies, true)
	utils.DataMessageResponse(c, http.StatusOK, "You have been logged out successfully", gin.H{"redirect": "/"})
}

// CheckUsername reports whether a username is still free
func (h *AuthHandler) CheckUsername(c *gin.Context) {
	available, message, err := h.authService.CheckUsername(c.Request.Context(), c.Query("username"))
	if err != nil {
		respondError(c, err, "Failed to check username")
		return
	}
	utils.SuccessResponse(c, gin.H{"available": available, "message": message})
}

func (h *AuthHandler) SendEmailOTP(c *gin.Context) {
	var req EmailOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.authService.SendSignupEmailOTP(c.Request.Context(), req.Email); err != nil {
		respondError(c, err, "Failed to send OTP. Please try again.")
		return
	}
	utils.MessageResponse(c, "OTP sent to your email")
}

func (h *AuthHandler) VerifyEmailOTP(c *gin.Context) {
	var req EmailOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.authService.VerifySignupEmailOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		respondError(c, err, "Failed to verify OTP")
		return
	}
	utils.MessageResponse(c, "Email verified successfully")
}

func (h *AuthHandler) SendPhoneOTP(c *gin.Context) {
	var req PhoneOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.authService.SendSignupPhoneOTP(c.Request.Context(), req.CountryCode, req.Phone); err != nil {
		respondError(c, err, "Failed to send OTP. Please try again.")
		return
	}
	utils.MessageResponse(c, "OTP sent to your phone")
}

func (h *AuthHandler) VerifyPhoneOTP(c *gin.Context) {
	var req PhoneOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.authService.VerifySignupPhoneOTP(c.Request.Context(), req.CountryCode, req.Phone, req.OTP); err != nil {
		respondError(c, err, "Failed to verify OTP")
		return
	}
	utils.MessageResponse(c, "Phone verified successfully")
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req EmailOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	message, err := h.authService.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err, "Failed to send OTP. Please try again.")
		return
	}
	utils.DataMessageResponse(c, http.StatusOK, message, gin.H{"redirect": "/auth/verify-password-reset-otp"})
}

// VerifyPasswordResetOTP hands out the reset token both as a cookie and in
// the body
func (h *AuthHandler) VerifyPasswordResetOTP(c *gin.Context) {
	var req EmailOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	token, err := h.authService.VerifyPasswordResetOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		respondError(c, err, "Failed to verify OTP")
		return
	}

	c.SetCookie(resetCookie, token, 15*60, "/auth", "", h.secureCookies, true)
	utils.DataMessageResponse(c, http.StatusOK, "OTP verified successfully! Please set your new password.", gin.H{
		"reset_token": token,
		"redirect":    "/auth/reset-password",
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ResetToken == "" {
		req.ResetToken, _ = c.Cookie(resetCookie)
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.ResetToken, req.Password, req.ConfirmPassword); err != nil {
		respondError(c, err, "Failed to reset password")
		return
	}

	c.SetCookie(resetCookie, "", -1, "/auth", "", h.secureCookies, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", h.secureCookies, true)
	utils.DataMessageResponse(c, http.StatusOK, "Password reset successfully! Please login with your new password.", gin.H{"redirect": "/auth/login"})
}
