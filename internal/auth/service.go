package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

type userFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, access scope.Access, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type profileFinder interface {
	FindByUserAndBranch(ctx context.Context, userID, branchID uuid.UUID) (*models.UserProfile, error)
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
}

type branchFinder interface {
	FindByID(ctx context.Context, access scope.Access, id uuid.UUID) (*models.Branch, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// Service exposes the authentication operations.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	Me(ctx context.Context, access scope.Access) (*Identity, error)
	Logout(ctx context.Context, accessID string) error
}

type service struct {
	users    userFinder
	profiles profileFinder
	branches branchFinder
	sessions sessionManager
	jwtCfg   config.JWTConfig
	log      *logger.Logger
	now      func() time.Time
}

// NewService builds the auth service.
func NewService(users userFinder, profiles profileFinder, branches branchFinder, sessions sessionManager, jwtCfg config.JWTConfig, log *logger.Logger) (Service, error) {
	if users == nil || profiles == nil || branches == nil {
		return nil, fmt.Errorf("user, profile, and branch repositories required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		users:    users,
		profiles: profiles,
		branches: branches,
		sessions: sessions,
		jwtCfg:   jwtCfg,
		log:      log,
		now:      time.Now,
	}, nil
}

// invalidCredentials is the single answer for every login failure mode, so
// responses do not leak which part of the credential set was wrong.
func invalidCredentials() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
}

func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	fields := pkgerrors.FieldErrors{}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		fields.Add("email", "this field is required")
	}
	if input.Password == "" {
		fields.Add("password", "this field is required")
	}
	if input.BranchID == uuid.Nil {
		fields.Add("branch_id", "this field is required")
	}
	if !fields.Empty() {
		return nil, pkgerrors.Validation(fields)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	match, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !match {
		return nil, invalidCredentials()
	}
	if !user.IsActive {
		return nil, invalidCredentials()
	}

	profile, err := s.profiles.FindByUserAndBranch(ctx, user.ID, input.BranchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	access := accessFor(user, profile)
	branch, err := s.branches.FindByID(ctx, access, profile.BranchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}

	now := s.now()
	jti := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID:       user.ID,
		ProfileID:    &profile.ID,
		BranchID:     &profile.BranchID,
		IsSupervisor: profile.IsSupervisor,
		SystemRole:   user.SystemRole,
		JTI:          jti,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	refresh, err := s.sessions.Generate(ctx, jti)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create session")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// Login already succeeded; a stale last_login_at is not worth a 5xx.
		s.log.Warn(s.log.WithUserID(ctx, user.ID.String()), "update last login failed")
	}

	return &LoginResult{
		Token:   token,
		Refresh: refresh,
		User: AuthenticatedUser{
			ID:           user.ID,
			Username:     user.Username,
			Email:        user.Email,
			FirstName:    user.FirstName,
			LastName:     user.LastName,
			IsSupervisor: profile.IsSupervisor,
			EmployeeID:   profile.EmployeeID,
			Branch:       BranchSummary{ID: branch.ID, Name: branch.Name},
		},
	}, nil
}

func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	if strings.TrimSpace(accessToken) == "" || strings.TrimSpace(refreshToken) == "" {
		return nil, invalidSession()
	}

	// The access token may be expired here; refresh only needs its claims.
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, invalidSession()
	}

	newJTI, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, invalidSession()
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID:       claims.UserID,
		ProfileID:    claims.ProfileID,
		BranchID:     claims.BranchID,
		IsSupervisor: claims.IsSupervisor,
		SystemRole:   claims.SystemRole,
		JTI:          newJTI,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token")
	}

	return &TokenPair{Token: token, Refresh: newRefresh}, nil
}

func (s *service) Me(ctx context.Context, access scope.Access) (*Identity, error) {
	user, err := s.users.FindByID(ctx, access, access.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	profile, err := s.profiles.FindByUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	branch, err := s.branches.FindByID(ctx, access, profile.BranchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load branch")
	}

	return &Identity{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		IsActive:    user.IsActive,
		SystemRole:  user.SystemRole,
		LastLoginAt: user.LastLoginAt,
		Profile: ProfileInfo{
			ID:           profile.ID,
			EmployeeID:   profile.EmployeeID,
			IsSupervisor: profile.IsSupervisor,
			Branch:       BranchSummary{ID: branch.ID, Name: branch.Name},
		},
	}, nil
}

// Logout revokes the caller's refresh session. A missing session is a no-op,
// logging out twice is fine.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func invalidSession() *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired session")
}

func accessFor(user *models.User, profile *models.UserProfile) scope.Access {
	return scope.Access{
		UserID:       user.ID,
		ProfileID:    &profile.ID,
		BranchID:     &profile.BranchID,
		IsSupervisor: profile.IsSupervisor,
		IsAdmin:      user.IsAdmin(),
	}
}
