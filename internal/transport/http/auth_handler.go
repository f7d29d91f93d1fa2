package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/surithanda/matrimonyservicesapi-sub000/internal/service"
	"github.com/surithanda/matrimonyservicesapi-sub000/internal/util"
)

type AuthHandler struct {
	auth    *service.AuthService
	limiter service.AttemptLimiter
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService, limiter service.AttemptLimiter) {
	handler := &AuthHandler{auth: auth, limiter: limiter}

	group := e.Group("/api/v1/auth")
	group.POST("/register", handler.register)
	group.POST("/login", handler.login)
	group.POST("/verify-otp", handler.verifyOTP)
	group.POST("/google", handler.google)
	group.POST("/forgot-password", handler.forgotPassword)
	group.POST("/reset-password", handler.resetPassword)

	protected := e.Group("/api/v1/auth", RequireAuth(auth))
	protected.GET("/me", handler.me)
	protected.POST("/change-password", handler.changePassword)
	protected.DELETE("/account", handler.deactivate)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, util.Error("email and password are required"))
	}

	account, err := h.auth.RegisterWithEmail(c.Request().Context(), req.Email, req.Password,
		optionalField(req.FirstName), optionalField(req.LastName), optionalField(req.Phone))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordTooWeak):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case errors.Is(err, service.ErrEmailAlreadyUsed):
			return c.JSON(http.StatusConflict, util.Error("email already registered"))
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusBadRequest, util.Error("a valid email is required"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not create account"))
		}
	}

	return c.JSON(http.StatusCreated, util.Data("account", toAuthAccount(account)))
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.limiter.Allow(c.Request().Context(), "login", strings.ToLower(strings.TrimSpace(req.Email)), c.RealIP()); err != nil {
		if errors.Is(err, service.ErrRateLimited) {
			return c.JSON(http.StatusTooManyRequests, util.Error("too many attempts, try again later"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not process login"))
	}

	ref, err := h.auth.LoginWithEmail(c.Request().Context(), req.Email, req.Password, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, util.Error("invalid email or password"))
		case errors.Is(err, service.ErrOTPDelivery):
			return c.JSON(http.StatusInternalServerError, util.Error("could not send verification code"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not process login"))
		}
	}

	return c.JSON(http.StatusOK, util.Data("challenge", toChallengeResponse(ref)))
}

func (h *AuthHandler) verifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	ref, err := uuid.Parse(strings.TrimSpace(req.ChallengeRef))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("challenge_ref must be a valid UUID"))
	}

	if err := h.limiter.Allow(c.Request().Context(), "verify-otp", ref.String(), c.RealIP()); err != nil {
		if errors.Is(err, service.ErrRateLimited) {
			return c.JSON(http.StatusTooManyRequests, util.Error("too many attempts, try again later"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not verify code"))
	}

	result, err := h.auth.VerifyLoginOTP(c.Request().Context(), ref, strings.TrimSpace(req.OTP))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOTPInvalid):
			return c.JSON(http.StatusUnauthorized, util.Error("invalid or expired code"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not verify code"))
		}
	}

	return c.JSON(http.StatusOK, toTokenResponse(result))
}

func (h *AuthHandler) google(c echo.Context) error {
	var req GoogleLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if strings.TrimSpace(req.IDToken) == "" {
		return c.JSON(http.StatusBadRequest, util.Error("id_token is required"))
	}

	result, err := h.auth.LoginWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, util.Error("invalid google token"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not process login"))
		}
	}

	return c.JSON(http.StatusOK, toTokenResponse(result))
}

// forgotPassword always answers 200 with a challenge shape, whether or not
// the address belongs to an account.
func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req PasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, util.Error("email is required"))
	}

	if err := h.limiter.Allow(c.Request().Context(), "forgot-password", strings.ToLower(strings.TrimSpace(req.Email)), c.RealIP()); err != nil {
		if errors.Is(err, service.ErrRateLimited) {
			return c.JSON(http.StatusTooManyRequests, util.Error("too many attempts, try again later"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not process request"))
	}

	ref, err := h.auth.RequestPasswordReset(c.Request().Context(), req.Email, clientMeta(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOTPDelivery):
			return c.JSON(http.StatusInternalServerError, util.Error("could not send reset code"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not process request"))
		}
	}

	return c.JSON(http.StatusOK, util.Envelope{
		"challenge": toChallengeResponse(ref),
		"message":   "if the address is registered, a reset code has been sent",
	})
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req PasswordResetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	ref, err := uuid.Parse(strings.TrimSpace(req.ChallengeRef))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("challenge_ref must be a valid UUID"))
	}

	if err := h.limiter.Allow(c.Request().Context(), "reset-password", ref.String(), c.RealIP()); err != nil {
		if errors.Is(err, service.ErrRateLimited) {
			return c.JSON(http.StatusTooManyRequests, util.Error("too many attempts, try again later"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("could not reset password"))
	}

	if err := h.auth.ConfirmPasswordReset(c.Request().Context(), ref, strings.TrimSpace(req.OTP), req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordTooWeak):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case errors.Is(err, service.ErrOTPInvalid):
			return c.JSON(http.StatusUnauthorized, util.Error("invalid or expired code"))
		case errors.Is(err, service.ErrPasswordUpdateAfterVerify):
			return c.JSON(http.StatusInternalServerError, util.Error("code verified but the password could not be updated; request a new code"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not reset password"))
		}
	}

	return c.JSON(http.StatusOK, util.Message("password has been reset"))
}

func (h *AuthHandler) me(c echo.Context) error {
	account, ok := CurrentAccount(c)
	if !ok || account == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	return c.JSON(http.StatusOK, util.Data("account", toAuthAccount(account)))
}

func (h *AuthHandler) changePassword(c echo.Context) error {
	account, ok := CurrentAccount(c)
	if !ok || account == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	var req ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}

	if err := h.auth.ChangePassword(c.Request().Context(), account.ID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return c.JSON(http.StatusUnauthorized, util.Error("current password is incorrect"))
		case errors.Is(err, service.ErrPasswordTooWeak):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case errors.Is(err, service.ErrPasswordUnchanged):
			return c.JSON(http.StatusBadRequest, util.Error("new password must differ from the current one"))
		default:
			return c.JSON(http.StatusInternalServerError, util.Error("could not change password"))
		}
	}

	return c.JSON(http.StatusOK, util.Message("password has been changed"))
}

func (h *AuthHandler) deactivate(c echo.Context) error {
	account, ok := CurrentAccount(c)
	if !ok || account == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}

	if err := h.auth.DeactivateAccount(c.Request().Context(), account.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("could not deactivate account"))
	}
	return c.JSON(http.StatusOK, util.Message("account deactivated"))
}

func clientMeta(c echo.Context) service.ClientMeta {
	return service.ClientMeta{
		IP:        c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
}

func toChallengeResponse(ref *service.ChallengeRef) ChallengeResponse {
	return ChallengeResponse{
		ChallengeRef: ref.Ref.String(),
		ExpiresAt:    ref.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

func toTokenResponse(result *service.AuthResult) AuthTokenResponse {
	return AuthTokenResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
		Account:   toAuthAccount(result.Account),
	}
}

func optionalField(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
