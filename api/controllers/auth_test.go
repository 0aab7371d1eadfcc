package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/hmendoza/prepflow-backend/api/middleware"
	"github.com/hmendoza/prepflow-backend/internal/auth"
	"github.com/hmendoza/prepflow-backend/internal/scope"
	pkgerrors "github.com/hmendoza/prepflow-backend/pkg/errors"
)

type stubAuthService struct {
	loginFn   func(ctx context.Context, input auth.LoginInput) (*auth.LoginResult, error)
	refreshFn func(ctx context.Context, accessToken, refreshToken string) (*auth.TokenPair, error)
	meFn      func(ctx context.Context, access scope.Access) (*auth.Identity, error)
	logoutFn  func(ctx context.Context, accessID string) error
}

func (s stubAuthService) Login(ctx context.Context, input auth.LoginInput) (*auth.LoginResult, error) {
	return s.loginFn(ctx, input)
}

func (s stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*auth.TokenPair, error) {
	return s.refreshFn(ctx, accessToken, refreshToken)
}

func (s stubAuthService) Me(ctx context.Context, access scope.Access) (*auth.Identity, error) {
	return s.meFn(ctx, access)
}

func (s stubAuthService) Logout(ctx context.Context, accessID string) error {
	return s.logoutFn(ctx, accessID)
}

func testAccess() scope.Access {
	branchID := uuid.New()
	profileID := uuid.New()
	return scope.Access{
		UserID:    uuid.New(),
		ProfileID: &profileID,
		BranchID:  &branchID,
	}
}

func TestAuthLoginSuccess(t *testing.T) {
	branchID := uuid.New()
	svc := stubAuthService{
		loginFn: func(ctx context.Context, input auth.LoginInput) (*auth.LoginResult, error) {
			if input.BranchID != branchID {
				t.Fatalf("expected branch %s got %s", branchID, input.BranchID)
			}
			return &auth.LoginResult{Token: "access-token", Refresh: "refresh-token"}, nil
		},
	}
	handler := AuthLogin(svc, nil)

	payload := []byte(`{"email":"ana@example.com","password":"s3cret!","branch_id":"` + branchID.String() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data auth.LoginResult `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Token != "access-token" {
		t.Fatalf("expected access token, got %q", envelope.Data.Token)
	}
}

func TestAuthLoginRejectsBadBranchID(t *testing.T) {
	handler := AuthLogin(stubAuthService{
		loginFn: func(context.Context, auth.LoginInput) (*auth.LoginResult, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}, nil)

	payload := []byte(`{"email":"ana@example.com","password":"s3cret!","branch_id":"not-a-uuid"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAuthRefreshRequiresBearer(t *testing.T) {
	handler := AuthRefresh(stubAuthService{
		refreshFn: func(context.Context, string, string) (*auth.TokenPair, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}, nil)

	payload := []byte(`{"refresh":"refresh-token"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthRefreshRotates(t *testing.T) {
	svc := stubAuthService{
		refreshFn: func(_ context.Context, accessToken, refreshToken string) (*auth.TokenPair, error) {
			if accessToken != "expired-token" || refreshToken != "refresh-token" {
				t.Fatalf("unexpected tokens %q %q", accessToken, refreshToken)
			}
			return &auth.TokenPair{Token: "new-access", Refresh: "new-refresh"}, nil
		},
	}
	handler := AuthRefresh(svc, nil)

	payload := []byte(`{"refresh":"refresh-token"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer expired-token")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data auth.TokenPair `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Refresh != "new-refresh" {
		t.Fatalf("expected rotated refresh, got %q", envelope.Data.Refresh)
	}
}

func TestAuthMeMissingContext(t *testing.T) {
	handler := AuthMe(stubAuthService{
		meFn: func(context.Context, scope.Access) (*auth.Identity, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthMeProfileNotFound(t *testing.T) {
	handler := AuthMe(stubAuthService{
		meFn: func(context.Context, scope.Access) (*auth.Identity, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = req.WithContext(middleware.WithAccess(req.Context(), testAccess()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestAuthLogoutRevokesContextSession(t *testing.T) {
	var revoked string
	handler := AuthLogout(stubAuthService{
		logoutFn: func(_ context.Context, accessID string) error {
			revoked = accessID
			return nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req = req.WithContext(middleware.WithAccessID(req.Context(), "jti-123"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if revoked != "jti-123" {
		t.Fatalf("expected session jti-123 revoked, got %q", revoked)
	}
}
