package auth

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hmendoza/prepflow-backend/internal/scope"
	pkgauth "github.com/hmendoza/prepflow-backend/pkg/auth"
	"github.com/hmendoza/prepflow-backend/pkg/auth/session"
	"github.com/hmendoza/prepflow-backend/pkg/config"
	"github.com/hmendoza/prepflow-backend/pkg/db/models"
	pkgerrors "github.com/hmendoza/prepflow-backend/pkg/errors"
	"github.com/hmendoza/prepflow-backend/pkg/logger"
	"github.com/hmendoza/prepflow-backend/pkg/security"
)

var testJWTCfg = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "prepflow-test",
	ExpirationMinutes: 15,
}

var testPasswordCfg = config.PasswordConfig{
	ArgonMemoryKB:    1024,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

type stubUserFinder struct {
	byEmail       map[string]*models.User
	byID          map[uuid.UUID]*models.User
	lastLoginSet  *uuid.UUID
	lastLoginTime time.Time
}

func (s *stubUserFinder) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserFinder) FindByID(ctx context.Context, access scope.Access, id uuid.UUID) (*models.User, error) {
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserFinder) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.lastLoginSet = &id
	s.lastLoginTime = at
	return nil
}

type stubProfileFinder struct {
	byUserBranch map[uuid.UUID]map[uuid.UUID]*models.UserProfile
	byUser       map[uuid.UUID]*models.UserProfile
}

func (s *stubProfileFinder) FindByUserAndBranch(ctx context.Context, userID, branchID uuid.UUID) (*models.UserProfile, error) {
	if branches, ok := s.byUserBranch[userID]; ok {
		if profile, ok := branches[branchID]; ok {
			return profile, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProfileFinder) FindByUser(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	if profile, ok := s.byUser[userID]; ok {
		return profile, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubBranchFinder struct {
	branches map[uuid.UUID]*models.Branch
}

func (s *stubBranchFinder) FindByID(ctx context.Context, access scope.Access, id uuid.UUID) (*models.Branch, error) {
	if branch, ok := s.branches[id]; ok {
		return branch, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubSessionManager struct {
	generated []string
	rotateFn  func(oldAccessID, provided string) (string, string, error)
	revoked   []string
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateFn != nil {
		return s.rotateFn(oldAccessID, provided)
	}
	return "", "", session.ErrInvalidRefreshToken
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type authFixture struct {
	users    *stubUserFinder
	profiles *stubProfileFinder
	branches *stubBranchFinder
	sessions *stubSessionManager
	svc      Service

	user    *models.User
	profile *models.UserProfile
	branch  *models.Branch
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	hash, err := security.HashPassword("s3cret!", testPasswordCfg)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	branch := &models.Branch{ID: uuid.New(), Name: "Centro"}
	user := &models.User{
		ID:           uuid.New(),
		Username:     "ana",
		Email:        "ana@example.com",
		PasswordHash: hash,
		FirstName:    "Ana",
		LastName:     "Souza",
		IsActive:     true,
	}
	profile := &models.UserProfile{
		ID:         uuid.New(),
		UserID:     user.ID,
		BranchID:   branch.ID,
		EmployeeID: "E-100",
	}

	f := &authFixture{
		users: &stubUserFinder{
			byEmail: map[string]*models.User{user.Email: user},
			byID:    map[uuid.UUID]*models.User{user.ID: user},
		},
		profiles: &stubProfileFinder{
			byUserBranch: map[uuid.UUID]map[uuid.UUID]*models.UserProfile{
				user.ID: {branch.ID: profile},
			},
			byUser: map[uuid.UUID]*models.UserProfile{user.ID: profile},
		},
		branches: &stubBranchFinder{branches: map[uuid.UUID]*models.Branch{branch.ID: branch}},
		sessions: &stubSessionManager{},
		user:     user,
		profile:  profile,
		branch:   branch,
	}

	log := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(f.users, f.profiles, f.branches, f.sessions, testJWTCfg, log)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func TestLoginSuccess(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.svc.Login(context.Background(), LoginInput{
		Email:    "Ana@Example.com",
		Password: "s3cret!",
		BranchID: f.branch.ID,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTCfg, result.Token)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != f.user.ID {
		t.Fatal("expected user id in claims")
	}
	if claims.ProfileID == nil || *claims.ProfileID != f.profile.ID {
		t.Fatal("expected profile id in claims")
	}
	if claims.BranchID == nil || *claims.BranchID != f.branch.ID {
		t.Fatal("expected branch id in claims")
	}
	if result.Refresh != "refresh-"+claims.ID {
		t.Fatal("expected refresh session keyed by the token jti")
	}
	if result.User.Branch.Name != "Centro" {
		t.Fatalf("expected branch summary, got %+v", result.User.Branch)
	}
	if f.users.lastLoginSet == nil || *f.users.lastLoginSet != f.user.ID {
		t.Fatal("expected last login update")
	}
}

func TestLoginFailuresCollapseToUnauthorized(t *testing.T) {
	f := newAuthFixture(t)

	inactive := newAuthFixture(t)
	inactive.user.IsActive = false

	noProfileBranch := uuid.New()

	cases := map[string]struct {
		fixture *authFixture
		input   LoginInput
	}{
		"unknown email": {f, LoginInput{Email: "ghost@example.com", Password: "s3cret!", BranchID: f.branch.ID}},
		"bad password":  {f, LoginInput{Email: f.user.Email, Password: "wrong", BranchID: f.branch.ID}},
		"inactive user": {inactive, LoginInput{Email: inactive.user.Email, Password: "s3cret!", BranchID: inactive.branch.ID}},
		"wrong branch":  {f, LoginInput{Email: f.user.Email, Password: "s3cret!", BranchID: noProfileBranch}},
	}

	for name, tc := range cases {
		_, err := tc.fixture.svc.Login(context.Background(), tc.input)
		appErr := pkgerrors.As(err)
		if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
			t.Errorf("%s: expected unauthorized, got %v", name, err)
			continue
		}
		if appErr.Message() != "invalid credentials" {
			t.Errorf("%s: expected the generic message, got %q", name, appErr.Message())
		}
	}
}

func TestLoginValidation(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Login(context.Background(), LoginInput{})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields, ok := appErr.Details().(pkgerrors.FieldErrors)
	if !ok {
		t.Fatalf("expected field errors, got %T", appErr.Details())
	}
	for _, name := range []string{"email", "password", "branch_id"} {
		if _, present := fields[name]; !present {
			t.Errorf("expected %s violation", name)
		}
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.svc.Login(context.Background(), LoginInput{
		Email:    f.user.Email,
		Password: "s3cret!",
		BranchID: f.branch.ID,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	newJTI := session.NewAccessID()
	f.sessions.rotateFn = func(oldAccessID, provided string) (string, string, error) {
		if provided != result.Refresh {
			return "", "", session.ErrInvalidRefreshToken
		}
		return newJTI, "rotated-refresh", nil
	}

	pair, err := f.svc.Refresh(context.Background(), result.Token, result.Refresh)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.Refresh != "rotated-refresh" {
		t.Fatalf("expected rotated refresh token, got %q", pair.Refresh)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTCfg, pair.Token)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if claims.ID != newJTI {
		t.Fatal("expected new jti in rotated token")
	}
	if claims.UserID != f.user.ID {
		t.Fatal("expected identity carried over")
	}
}

func TestRefreshRejectsInvalidToken(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Refresh(context.Background(), "not-a-jwt", "whatever")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRejectsUnknownSession(t *testing.T) {
	f := newAuthFixture(t)

	result, err := f.svc.Login(context.Background(), LoginInput{
		Email:    f.user.Email,
		Password: "s3cret!",
		BranchID: f.branch.ID,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = f.svc.Refresh(context.Background(), result.Token, "stolen-refresh")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestMeReturnsIdentity(t *testing.T) {
	f := newAuthFixture(t)

	access := scope.Access{
		UserID:    f.user.ID,
		ProfileID: &f.profile.ID,
		BranchID:  &f.branch.ID,
	}
	identity, err := f.svc.Me(context.Background(), access)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if identity.Username != "ana" {
		t.Fatalf("expected username, got %q", identity.Username)
	}
	if identity.Profile.Branch.Name != "Centro" {
		t.Fatalf("expected branch summary, got %+v", identity.Profile)
	}
}

func TestMeWithoutProfile(t *testing.T) {
	f := newAuthFixture(t)
	delete(f.profiles.byUser, f.user.ID)

	access := scope.Access{UserID: f.user.ID, IsAdmin: true}
	_, err := f.svc.Me(context.Background(), access)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	f := newAuthFixture(t)

	if err := f.svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("blank access id must be a no-op, got %v", err)
	}
	if len(f.sessions.revoked) != 0 {
		t.Fatal("revoke must not run for a blank access id")
	}

	if err := f.svc.Logout(context.Background(), "some-jti"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(f.sessions.revoked) != 1 || f.sessions.revoked[0] != "some-jti" {
		t.Fatalf("expected session revoked, got %v", f.sessions.revoked)
	}
}
