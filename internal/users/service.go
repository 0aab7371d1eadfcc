package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hmendoza/prepflow-backend/internal/scope"
	"github.com/hmendoza/prepflow-backend/pkg/config"
	"github.com/hmendoza/prepflow-backend/pkg/db"
	"github.com/hmendoza/prepflow-backend/pkg/db/models"
	pkgerrors "github.com/hmendoza/prepflow-backend/pkg/errors"
	"github.com/hmendoza/prepflow-backend/pkg/pagination"
	"github.com/hmendoza/prepflow-backend/pkg/security"
)

const tempPasswordLength = 16

type userRepository interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByID(ctx context.Context, access scope.Access, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, access scope.Access, page pagination.Params) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreateUserInput carries caller-supplied fields for a new user. A blank
// password provisions the account with a generated temporary one.
type CreateUserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// Service exposes user operations.
type Service interface {
	Create(ctx context.Context, input CreateUserInput) (*UserDTO, string, error)
	GetByID(ctx context.Context, access scope.Access, id uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, access scope.Access, page pagination.Params) ([]UserDTO, error)
	Update(ctx context.Context, access scope.Access, id uuid.UUID, input UpdateUserInput) (*UserDTO, error)
	Delete(ctx context.Context, access scope.Access, id uuid.UUID) error
}

type service struct {
	repo        userRepository
	passwordCfg config.PasswordConfig
}

// NewService builds a user service with the provided repository.
func NewService(repo userRepository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo, passwordCfg: passwordCfg}, nil
}

func (s *service) Create(ctx context.Context, input CreateUserInput) (*UserDTO, string, error) {
	fields := pkgerrors.FieldErrors{}
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)

	if username == "" {
		fields.Add("username", "this field may not be blank")
	}
	if email == "" {
		fields.Add("email", "this field may not be blank")
	} else if !strings.Contains(email, "@") {
		fields.Add("email", "enter a valid email address")
	}
	if firstName == "" {
		fields.Add("first_name", "this field may not be blank")
	}
	if lastName == "" {
		fields.Add("last_name", "this field may not be blank")
	}
	if !fields.Empty() {
		return nil, "", pkgerrors.Validation(fields)
	}

	password := input.Password
	tempPassword := ""
	if password == "" {
		generated, err := security.GenerateTempPassword(tempPasswordLength)
		if err != nil {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
		}
		password = generated
		tempPassword = generated
	}

	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.repo.Create(ctx, CreateUserDTO{
		Username:     username,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: hash,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, "", pkgerrors.New(pkgerrors.CodeConflict, "user with this username or email already exists")
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return FromModel(user), tempPassword, nil
}

func (s *service) GetByID(ctx context.Context, access scope.Access, id uuid.UUID) (*UserDTO, error) {
	user, err := s.loadScoped(ctx, access, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, access scope.Access, page pagination.Params) ([]UserDTO, error) {
	users, err := s.repo.List(ctx, access, page)
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return FromModels(users), nil
}

func (s *service) Update(ctx context.Context, access scope.Access, id uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	fields := pkgerrors.FieldErrors{}
	if input.Username != nil && strings.TrimSpace(*input.Username) == "" {
		fields.Add("username", "this field may not be blank")
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			fields.Add("email", "this field may not be blank")
		} else if !strings.Contains(email, "@") {
			fields.Add("email", "enter a valid email address")
		}
	}
	if !fields.Empty() {
		return nil, pkgerrors.Validation(fields)
	}

	user, err := s.loadScoped(ctx, access, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil {
		user.Username = strings.TrimSpace(*input.Username)
	}
	if input.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user with this username or email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
	}
	return FromModel(user), nil
}

func (s *service) Delete(ctx context.Context, access scope.Access, id uuid.UUID) error {
	if access.UserID == id {
		return pkgerrors.New(pkgerrors.CodeForbidden, "cannot delete your own account")
	}
	if _, err := s.loadScoped(ctx, access, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
	}
	return nil
}

func (s *service) loadScoped(ctx context.Context, access scope.Access, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, access, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
