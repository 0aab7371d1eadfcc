package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hmendoza/prepflow-backend/api/middleware"
	"github.com/hmendoza/prepflow-backend/internal/branches"
	"github.com/hmendoza/prepflow-backend/internal/scope"
	pkgerrors "github.com/hmendoza/prepflow-backend/pkg/errors"
	"github.com/hmendoza/prepflow-backend/pkg/pagination"
)

type stubBranchService struct {
	createFn func(ctx context.Context, input branches.CreateBranchDTO) (*branches.BranchDTO, error)
	getFn    func(ctx context.Context, access scope.Access, id uuid.UUID) (*branches.BranchDTO, error)
	listFn   func(ctx context.Context, access scope.Access, page pagination.Params) ([]branches.BranchDTO, error)
	updateFn func(ctx context.Context, access scope.Access, id uuid.UUID, input branches.UpdateBranchInput) (*branches.BranchDTO, error)
	deleteFn func(ctx context.Context, access scope.Access, id uuid.UUID) error
}

func (s stubBranchService) Create(ctx context.Context, input branches.CreateBranchDTO) (*branches.BranchDTO, error) {
	return s.createFn(ctx, input)
}

func (s stubBranchService) GetByID(ctx context.Context, access scope.Access, id uuid.UUID) (*branches.BranchDTO, error) {
	return s.getFn(ctx, access, id)
}

func (s stubBranchService) List(ctx context.Context, access scope.Access, page pagination.Params) ([]branches.BranchDTO, error) {
	return s.listFn(ctx, access, page)
}

func (s stubBranchService) Update(ctx context.Context, access scope.Access, id uuid.UUID, input branches.UpdateBranchInput) (*branches.BranchDTO, error) {
	return s.updateFn(ctx, access, id, input)
}

func (s stubBranchService) Delete(ctx context.Context, access scope.Access, id uuid.UUID) error {
	return s.deleteFn(ctx, access, id)
}

func pathRequest(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestBranchCreateSuccess(t *testing.T) {
	svc := stubBranchService{
		createFn: func(_ context.Context, input branches.CreateBranchDTO) (*branches.BranchDTO, error) {
			return &branches.BranchDTO{ID: uuid.New(), Name: input.Name, TaxID: input.TaxID}, nil
		},
	}
	handler := BranchCreate(svc, nil)

	payload := []byte(`{"name":"Centro","tax_id":"12345678901234"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/branches/", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data branches.BranchDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Name != "Centro" {
		t.Fatalf("expected Centro, got %q", envelope.Data.Name)
	}
}

func TestBranchDetailRejectsBadID(t *testing.T) {
	handler := BranchDetail(stubBranchService{
		getFn: func(context.Context, scope.Access, uuid.UUID) (*branches.BranchDTO, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/branches/nope", nil)
	req = req.WithContext(middleware.WithAccess(req.Context(), testAccess()))
	req = pathRequest(req, "id", "nope")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestBranchDetailNotFound(t *testing.T) {
	handler := BranchDetail(stubBranchService{
		getFn: func(context.Context, scope.Access, uuid.UUID) (*branches.BranchDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "branch not found")
		},
	}, nil)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/branches/"+id.String(), nil)
	req = req.WithContext(middleware.WithAccess(req.Context(), testAccess()))
	req = pathRequest(req, "id", id.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestBranchListMissingContext(t *testing.T) {
	handler := BranchList(stubBranchService{
		listFn: func(context.Context, scope.Access, pagination.Params) ([]branches.BranchDTO, error) {
			t.Fatal("service should not be called")
			return nil, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/branches/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestBranchDeleteNoContent(t *testing.T) {
	var deleted uuid.UUID
	handler := BranchDelete(stubBranchService{
		deleteFn: func(_ context.Context, _ scope.Access, id uuid.UUID) error {
			deleted = id
			return nil
		},
	}, nil)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/branches/"+id.String(), nil)
	req = req.WithContext(middleware.WithAccess(req.Context(), testAccess()))
	req = pathRequest(req, "id", id.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
	if deleted != id {
		t.Fatalf("expected delete of %s got %s", id, deleted)
	}
}

func TestBranchUpdatePartialBody(t *testing.T) {
	handler := BranchUpdate(stubBranchService{
		updateFn: func(_ context.Context, _ scope.Access, id uuid.UUID, input branches.UpdateBranchInput) (*branches.BranchDTO, error) {
			if input.Name == nil || *input.Name != "Norte" {
				t.Fatalf("expected name Norte, got %v", input.Name)
			}
			if input.TaxID != nil {
				t.Fatalf("expected tax id untouched, got %v", *input.TaxID)
			}
			return &branches.BranchDTO{ID: id, Name: *input.Name}, nil
		},
	}, nil)

	id := uuid.New()
	payload := []byte(`{"name":"Norte"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/branches/"+id.String(), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithAccess(req.Context(), testAccess()))
	req = pathRequest(req, "id", id.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}
