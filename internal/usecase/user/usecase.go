package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "menu-service/internal/domain/user"
	pkgerrors "menu-service/pkg/errors"
	"menu-service/pkg/logger"
	"menu-service/pkg/security"
)

// Repository defines the interface for user data access operations.
type Repository interface {
	List(ctx context.Context) ([]domain.User, error)                     // All users ordered by id
	GetByID(ctx context.Context, id int64) (*domain.User, error)         // NotFound when absent
	GetByEmail(ctx context.Context, email string) (*domain.User, error)  // nil, nil when absent
	Create(ctx context.Context, u *domain.User) (*domain.User, error)    // AlreadyExists on duplicate email
	UpdatePassword(ctx context.Context, id int64, password string) error // Replace the stored secret
	Delete(ctx context.Context, id int64) (*domain.User, error)          // Returns the removed row
}

// PasswordHasher hashes and verifies user secrets.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(stored, password string) (needsRehash bool, err error)
}

// Service implements Usecase.
type Service struct {
	repo     Repository
	hasher   PasswordHasher
	log      *zap.Logger
	validate *validator.Validate
}

var _ Usecase = (*Service)(nil)

// New creates a new user Service.
func New(r Repository, h PasswordHasher, log *zap.Logger) *Service {
	return &Service{repo: r, hasher: h, log: log, validate: validator.New()}
}

func toDTO(u *domain.User) *User {
	return &User{ID: u.ID, Email: u.Email}
}

// ListUsers returns every registered user.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]User, len(users))
	for i := range users {
		out[i] = *toDTO(&users[i])
	}
	return out, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, in GetUserRequest) (*User, error) {
	if in.ID <= 0 {
		return nil, pkgerrors.ErrUserNotFound
	}

	u, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	return toDTO(u), nil
}

// CreateUser registers a user after validating the request and checking email uniqueness.
// The password is stored as a bcrypt hash.
func (s *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*User, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("creating user", zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, validationError(err)
	}
	if len(in.Password) > security.MaxPasswordLength {
		return nil, pkgerrors.NewValidationError("Password", fmt.Sprintf("Password excede la longitud máxima de %d", security.MaxPasswordLength))
	}

	existing, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		log.Warn("email already exists", zap.String("email", in.Email))
		return nil, pkgerrors.ErrUserAlreadyExists
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to hash password", err)
	}

	created, err := s.repo.Create(ctx, &domain.User{Email: in.Email, Password: hash})
	if err != nil {
		return nil, err
	}
	return toDTO(created), nil
}

// Authenticate checks credentials. Missing fields, unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, in AuthenticateRequest) (*User, error) {
	log := logger.WithContext(ctx, s.log)

	if in.Email == "" || in.Password == "" {
		log.Info("login rejected", zap.String("reason", "missing credentials"))
		return nil, pkgerrors.ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		log.Info("login rejected", zap.String("reason", "unknown email"))
		return nil, pkgerrors.ErrInvalidCredentials
	}

	needsRehash, err := s.hasher.Verify(u.Password, in.Password)
	if err != nil {
		if !errors.Is(err, security.ErrMismatch) {
			log.Error("password verification failed", zap.Int64("id", u.ID), zap.Error(err))
		}
		log.Info("login rejected", zap.Int64("id", u.ID), zap.String("reason", "bad password"))
		return nil, pkgerrors.ErrInvalidCredentials
	}

	if needsRehash {
		s.rehash(ctx, u.ID, in.Password)
	}
	return toDTO(u), nil
}

// rehash replaces a legacy plaintext secret with its hash. Failure does not
// fail the login; the next successful login retries.
func (s *Service) rehash(ctx context.Context, id int64, password string) {
	log := logger.WithContext(ctx, s.log)

	hash, err := s.hasher.Hash(password)
	if err != nil {
		log.Warn("failed to hash legacy password", zap.Int64("id", id), zap.Error(err))
		return
	}
	if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
		log.Warn("failed to upgrade legacy password", zap.Int64("id", id), zap.Error(err))
		return
	}
	log.Info("legacy password upgraded", zap.Int64("id", id))
}

// DeleteUser deletes a user and returns the removed record.
func (s *Service) DeleteUser(ctx context.Context, in DeleteUserRequest) (*User, error) {
	logger.WithContext(ctx, s.log).Info("deleting user", zap.Int64("id", in.ID))

	if in.ID <= 0 {
		return nil, pkgerrors.ErrUserNotFound
	}

	u, err := s.repo.Delete(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	return toDTO(u), nil
}

// validationError reports missing credentials with the fixed client message and
// other failures per field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return pkgerrors.NewValidationError("", pkgerrors.MsgMissingCredentials)
	}

	for _, e := range verrs {
		if e.Tag() == "required" {
			return pkgerrors.NewValidationError(e.Field(), pkgerrors.MsgMissingCredentials)
		}
	}

	e := verrs[0]
	if e.Tag() == "max" {
		return pkgerrors.NewValidationError(e.Field(), fmt.Sprintf("%s excede la longitud máxima de %s", e.Field(), e.Param()))
	}
	return pkgerrors.NewValidationError(e.Field(), pkgerrors.MsgMissingCredentials)
}
