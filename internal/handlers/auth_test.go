package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSignUp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		auth       *mockAuth
		wantStatus int
		wantBody   string
	}{
		{
			name: "created",
			body: `{"username":"ops","password":"s3cret"}`,
			auth: &mockAuth{
				SignUpFn: func(username, password string) (int, error) {
					return 7, nil
				},
			},
			wantStatus: http.StatusOK,
			wantBody:   `"id":7`,
		},
		{
			name:       "missing password",
			body:       `{"username":"ops"}`,
			auth:       &mockAuth{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate username",
			body: `{"username":"ops","password":"s3cret"}`,
			auth: &mockAuth{
				SignUpFn: func(username, password string) (int, error) {
					return 0, errors.New("username already taken")
				},
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "already taken",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestHandler(nil, nil, tt.auth)
			router := h.InitRoutes()

			req := httptest.NewRequest(http.MethodPost, "/auth/sign-up", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status: want %d, got %d (%s)", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body: want substring %q, got %s", tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestSignIn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		auth       *mockAuth
		wantStatus int
		wantBody   string
	}{
		{
			name: "token issued",
			body: `{"username":"ops","password":"s3cret"}`,
			auth: &mockAuth{
				GenerateTokenFn: func(username, password string) (string, error) {
					return "jwt-token", nil
				},
			},
			wantStatus: http.StatusOK,
			wantBody:   "jwt-token",
		},
		{
			name: "wrong password",
			body: `{"username":"ops","password":"nope"}`,
			auth: &mockAuth{
				GenerateTokenFn: func(username, password string) (string, error) {
					return "", errors.New("invalid credentials")
				},
			},
			wantStatus: http.StatusUnauthorized,
			wantBody:   "invalid credentials",
		},
		{
			name:       "malformed body",
			body:       `{"username":`,
			auth:       &mockAuth{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newTestHandler(nil, nil, tt.auth)
			router := h.InitRoutes()

			req := httptest.NewRequest(http.MethodPost, "/auth/sign-in", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status: want %d, got %d (%s)", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body: want substring %q, got %s", tt.wantBody, w.Body.String())
			}
		})
	}
}
