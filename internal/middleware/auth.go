package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/taskify/backend/api/transport"
	"github.com/taskify/backend/domain"
	"github.com/taskify/backend/internal/session"
)

const claimsKey = "session_claims"

// DenyMode selects what an unauthenticated request gets back.
type DenyMode int

const (
	// DenyRedirect sends browsers to the login page.
	DenyRedirect DenyMode = iota
	// DenyJSON returns a 401 envelope for the task API.
	DenyJSON
)

// SessionGuard validates the session cookie and attaches typed claims to the
// request. Missing cookie, bad signature, and expiry all degrade to
// unauthenticated, never to an error response.
func SessionGuard(sessions *session.Manager, mode DenyMode, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			token := session.FromRequest(ctx)
			if token == "" {
				deny(ctx, mode)
				return
			}

			claims, err := sessions.Verify(token)
			if err != nil {
				logger.Debug("session token rejected", zap.Error(err))
				deny(ctx, mode)
				return
			}

			ctx.SetUserValue(claimsKey, claims)
			next(ctx)
		}
	}
}

// ClaimsFrom returns the claims attached by SessionGuard.
func ClaimsFrom(ctx *fasthttp.RequestCtx) (*session.Claims, bool) {
	claims, ok := ctx.UserValue(claimsKey).(*session.Claims)
	return claims, ok
}

func deny(ctx *fasthttp.RequestCtx, mode DenyMode) {
	switch mode {
	case DenyJSON:
		ctx.Response.Header.SetContentType("application/json")
		ctx.SetStatusCode(http.StatusUnauthorized)
		body, _ := json.Marshal(transport.NewError(string(domain.ErrCodeUnauthorized), "authentication required", nil))
		ctx.SetBody(body)
	default:
		ctx.Redirect("/login", http.StatusSeeOther)
	}
}
