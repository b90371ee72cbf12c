package handler

import (
	"fmt"
	"html"

	"github.com/valyala/fasthttp"
)

// PagesHandler serves the minimal public pages. Rendering is deliberately
// bare: the pages exist so the form-driven auth flows have somewhere to live,
// not as a UI layer.
type PagesHandler struct{}

func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

func (h *PagesHandler) Landing(ctx *fasthttp.RequestCtx) {
	h.page(ctx, "Taskify", `<h1>Taskify</h1><p>Smart task manager.</p>
<p><a href="/register">Register</a> | <a href="/login">Login</a> | <a href="/dashboard">Dashboard</a></p>`)
}

func (h *PagesHandler) Register(ctx *fasthttp.RequestCtx) {
	h.page(ctx, "Register", `<h1>Register</h1>
<form method="post" action="/register">
<input name="name" placeholder="Name">
<input name="email" type="email" placeholder="Email">
<input name="password" type="password" placeholder="Password">
<input name="confirmPassword" type="password" placeholder="Confirm password">
<button type="submit">Register</button>
</form>`)
}

func (h *PagesHandler) Login(ctx *fasthttp.RequestCtx) {
	h.page(ctx, "Login", `<h1>Login</h1>
<form method="post" action="/login">
<input name="email" type="email" placeholder="Email">
<input name="password" type="password" placeholder="Password">
<button type="submit">Login</button>
</form>
<p><a href="/forgot-password">Forgot password?</a></p>`)
}

func (h *PagesHandler) ForgotPassword(ctx *fasthttp.RequestCtx) {
	h.page(ctx, "Forgot Password", `<h1>Forgot password</h1>
<form method="post" action="/forgot-password">
<input name="email" type="email" placeholder="Email">
<button type="submit">Send OTP</button>
</form>`)
}

func (h *PagesHandler) VerifyOTP(ctx *fasthttp.RequestCtx) {
	// Reflected into an attribute, so it must be escaped.
	email := html.EscapeString(string(ctx.QueryArgs().Peek("email")))
	h.page(ctx, "Verify OTP", fmt.Sprintf(`<h1>Verify OTP</h1>
<form method="post" action="/verify-otp">
<input name="email" type="email" value="%s" placeholder="Email">
<input name="otp" placeholder="6-digit code">
<input name="password" type="password" placeholder="New password">
<input name="confirmPassword" type="password" placeholder="Confirm password">
<button type="submit">Reset password</button>
</form>`, email))
}

func (h *PagesHandler) NotFound(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusNotFound)
	h.body(ctx, "Not Found", `<h1>Page not found</h1><p><a href="/">Back home</a></p>`)
}

func (h *PagesHandler) page(ctx *fasthttp.RequestCtx, title, content string) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	h.body(ctx, title, content)
}

func (h *PagesHandler) body(ctx *fasthttp.RequestCtx, title, content string) {
	ctx.Response.Header.SetContentType("text/html; charset=utf-8")
	fmt.Fprintf(ctx, `<!doctype html><html><head><title>%s</title></head><body>%s</body></html>`, title, content)
}
