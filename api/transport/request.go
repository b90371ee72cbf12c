package transport

import (
	"bytes"
	"encoding/json"

	"github.com/valyala/fasthttp"
)

// RegisterRequest is the registration payload, accepted as JSON or form data.
type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type VerifyOTPRequest struct {
	Email           string `json:"email"`
	OTP             string `json:"otp"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// TaskRequest is the task create/update payload (JSON only).
type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
}

// IsForm reports whether the request carries an HTML form body, which decides
// between redirect and JSON responses on the auth surface.
func IsForm(ctx *fasthttp.RequestCtx) bool {
	return bytes.Contains(ctx.Request.Header.ContentType(), []byte("application/x-www-form-urlencoded")) ||
		bytes.Contains(ctx.Request.Header.ContentType(), []byte("multipart/form-data"))
}

// DecodeBody fills dst from a JSON body, or from form fields when the request
// is form-encoded. Form decoding covers only the flat string fields the auth
// pages post.
func DecodeBody(ctx *fasthttp.RequestCtx, dst interface{}) error {
	if !IsForm(ctx) {
		return json.Unmarshal(ctx.PostBody(), dst)
	}

	args := ctx.PostArgs()
	switch v := dst.(type) {
	case *RegisterRequest:
		v.Name = string(args.Peek("name"))
		v.Email = string(args.Peek("email"))
		v.Password = string(args.Peek("password"))
		v.ConfirmPassword = string(args.Peek("confirmPassword"))
	case *LoginRequest:
		v.Email = string(args.Peek("email"))
		v.Password = string(args.Peek("password"))
	case *ForgotPasswordRequest:
		v.Email = string(args.Peek("email"))
	case *VerifyOTPRequest:
		v.Email = string(args.Peek("email"))
		v.OTP = string(args.Peek("otp"))
		v.Password = string(args.Peek("password"))
		v.ConfirmPassword = string(args.Peek("confirmPassword"))
	default:
		return json.Unmarshal(ctx.PostBody(), dst)
	}
	return nil
}
