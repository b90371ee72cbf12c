package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/valyala/fasthttp"
)

func TestVerifyOTPPage_EscapesReflectedEmail(t *testing.T) {
	t.Parallel()

	h := NewPagesHandler()
	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI(`/verify-otp?email=%22%3E%3Cscript%3Ealert(1)%3C%2Fscript%3E`)

	h.VerifyOTP(&ctx)

	body := string(ctx.Response.Body())
	if strings.Contains(body, "<script>") {
		t.Fatalf("reflected email rendered unescaped: %s", body)
	}
	if !strings.Contains(body, "&#34;&gt;&lt;script&gt;") {
		t.Fatalf("expected html-escaped email in the attribute, body: %s", body)
	}
}

func TestVerifyOTPPage_PrefillsEmail(t *testing.T) {
	t.Parallel()

	h := NewPagesHandler()
	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/verify-otp?email=alice%40example.com")

	h.VerifyOTP(&ctx)

	if !strings.Contains(string(ctx.Response.Body()), `value="alice@example.com"`) {
		t.Fatalf("email prefill missing: %s", ctx.Response.Body())
	}
}

func TestNotFoundPage(t *testing.T) {
	t.Parallel()

	h := NewPagesHandler()
	var ctx fasthttp.RequestCtx
	h.NotFound(&ctx)

	if got := ctx.Response.StatusCode(); got != http.StatusNotFound {
		t.Fatalf("status: got %d want %d", got, http.StatusNotFound)
	}
}
