package handler

import (
	"net/http"
	"net/url"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskify/backend/api/transport"
	"github.com/taskify/backend/domain"
	"github.com/taskify/backend/internal/session"
	authUC "github.com/taskify/backend/usecase/auth"
	"github.com/taskify/backend/pkg/httpcontext"
)

// AuthHandler serves registration, login, logout, the OTP reset flow, and the
// dashboard. Form submissions get redirects; JSON clients get envelopes.
type AuthHandler struct {
	baseHandler
	uc       *authUC.UseCase
	sessions *session.Manager
}

func NewAuthHandler(uc *authUC.UseCase, sessions *session.Manager, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		sessions:    sessions,
	}
}

func (h *AuthHandler) Register(ctx *fasthttp.RequestCtx) {
	var req transport.RegisterRequest
	if err := transport.DecodeBody(ctx, &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, token, err := h.uc.Register(stdCtx, authUC.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.sessions.SetCookie(ctx, token)
	if transport.IsForm(ctx) {
		ctx.Redirect("/dashboard", http.StatusSeeOther)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, user)
}

func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if err := transport.DecodeBody(ctx, &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, token, err := h.uc.Login(stdCtx, req.Email, req.Password)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.sessions.SetCookie(ctx, token)
	if transport.IsForm(ctx) {
		ctx.Redirect("/dashboard", http.StatusSeeOther)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}

func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	h.sessions.ClearCookie(ctx)
	ctx.Redirect("/", http.StatusSeeOther)
}

// ForgotPassword always answers success-shaped so responses carry no account
// enumeration signal.
func (h *AuthHandler) ForgotPassword(ctx *fasthttp.RequestCtx) {
	var req transport.ForgotPasswordRequest
	if err := transport.DecodeBody(ctx, &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.RequestPasswordReset(stdCtx, req.Email); err != nil {
		h.respondError(ctx, err)
		return
	}

	if transport.IsForm(ctx) {
		ctx.Redirect("/verify-otp?email="+url.QueryEscape(req.Email), http.StatusSeeOther)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "If that account exists, an OTP has been sent."})
}

func (h *AuthHandler) VerifyOTP(ctx *fasthttp.RequestCtx) {
	var req transport.VerifyOTPRequest
	if err := transport.DecodeBody(ctx, &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.VerifyOTPAndReset(stdCtx, req.Email, req.OTP, req.Password, req.ConfirmPassword); err != nil {
		h.respondError(ctx, err)
		return
	}

	if transport.IsForm(ctx) {
		ctx.Redirect("/login", http.StatusSeeOther)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "Password reset successful."})
}

// Dashboard returns the authenticated user's profile.
func (h *AuthHandler) Dashboard(ctx *fasthttp.RequestCtx) {
	claims := h.claims(ctx)
	if claims == nil {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.CurrentUser(stdCtx, claims.UserID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}
