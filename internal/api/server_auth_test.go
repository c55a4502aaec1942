package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"tasktracker/internal/auth"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignUp_Normal(t *testing.T) {
	creds := &stubCredentials{
		signUpFunc: func(_ context.Context, username, password string) (uint, error) {
			if username != "alice_01" || password != "super-secret" {
				t.Fatalf("unexpected credentials: %q %q", username, password)
			}
			return 11, nil
		},
	}
	s := newTestServer(t, &mockTaskStore{}, creds, nil)

	w := doJSON(t, s, http.MethodPost, "/auth/signup", "", `{"username":"alice_01","password":"super-secret"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	var resp map[string]uint
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["id"] != 11 {
		t.Fatalf("id = %d, want 11", resp["id"])
	}
}

func TestSignUp_Conflict(t *testing.T) {
	creds := &stubCredentials{
		signUpFunc: func(_ context.Context, _, _ string) (uint, error) {
			return 0, auth.ErrUsernameTaken
		},
	}
	s := newTestServer(t, &mockTaskStore{}, creds, nil)

	w := doJSON(t, s, http.MethodPost, "/auth/signup", "", `{"username":"alice_01","password":"super-secret"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestSignUp_BadRequest(t *testing.T) {
	s := newTestServer(t, &mockTaskStore{}, &stubCredentials{}, nil)

	cases := []string{
		`{"username":"alice_01"}`,            // 缺少密码
		`{"username":"a","password":"super-secret"}`, // 用户名过短
		`{"username":"alice_01","password":"short"}`, // 密码过短
		`not json`,
	}
	for _, body := range cases {
		w := doJSON(t, s, http.MethodPost, "/auth/signup", "", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}

func TestSignIn_IssuesToken(t *testing.T) {
	creds := &stubCredentials{
		validateFunc: func(_ context.Context, _, _ string) (uint, error) {
			return 42, nil
		},
	}
	limiter := &stubLimiter{allowed: true}
	s := newTestServer(t, &mockTaskStore{}, creds, limiter)

	w := doJSON(t, s, http.MethodPost, "/auth/signin", "", `{"username":"alice_01","password":"super-secret"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if limiter.calls != 1 {
		t.Fatalf("limiter calls = %d, want 1", limiter.calls)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(resp["token"], claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.Subject != "42" {
		t.Fatalf("subject = %q, want 42", claims.Subject)
	}
}

func TestSignIn_InvalidCredentialsUniform(t *testing.T) {
	// 未知用户与口令错误走的是服务内同一个哨兵，
	// 这里验证 API 层对两者返回完全一样的响应。
	creds := &stubCredentials{
		validateFunc: func(_ context.Context, _, _ string) (uint, error) {
			return 0, auth.ErrInvalidCredentials
		},
	}
	s := newTestServer(t, &mockTaskStore{}, creds, &stubLimiter{allowed: true})

	unknown := doJSON(t, s, http.MethodPost, "/auth/signin", "", `{"username":"nonexistent","password":"whatever-1"}`)
	wrong := doJSON(t, s, http.MethodPost, "/auth/signin", "", `{"username":"alice_01","password":"wrong-pass"}`)

	if unknown.Code != http.StatusUnauthorized || wrong.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d / %d, want 401 / 401", unknown.Code, wrong.Code)
	}
	if unknown.Body.String() != wrong.Body.String() {
		t.Fatalf("responses differ: %s vs %s", unknown.Body.String(), wrong.Body.String())
	}
}

func TestSignIn_Throttled(t *testing.T) {
	validateCalled := false
	creds := &stubCredentials{
		validateFunc: func(_ context.Context, _, _ string) (uint, error) {
			validateCalled = true
			return 42, nil
		},
	}
	s := newTestServer(t, &mockTaskStore{}, creds, &stubLimiter{allowed: false})

	w := doJSON(t, s, http.MethodPost, "/auth/signin", "", `{"username":"alice_01","password":"super-secret"}`)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}
	if validateCalled {
		t.Fatalf("credentials must not be checked when throttled")
	}
}
