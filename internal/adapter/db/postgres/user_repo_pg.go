package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"menu-service/internal/domain/user"
	pkgerrors "menu-service/pkg/errors"
	"menu-service/pkg/logger"
)

// UserRepoPG implements the user Repository using GORM.
type UserRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

// List returns every user ordered by id.
func (r *UserRepoPG) List(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		logger.WithContext(ctx, r.log).Error("failed to list users from db", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to list users", err)
	}

	users := make([]user.User, len(models))
	for i, m := range models {
		users[i] = m.toDomain()
	}
	return users, nil
}

// GetByID retrieves a user by primary key.
func (r *UserRepoPG) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrUserNotFound
		}
		logger.WithContext(ctx, r.log).Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, pkgerrors.NewInternalError("failed to get user", err)
	}

	u := model.toDomain()
	return &u, nil
}

// GetByEmail retrieves a user by email. It returns nil, nil when no row matches.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		logger.WithContext(ctx, r.log).Error("failed to get user by email from db", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to get user by email", err)
	}

	u := model.toDomain()
	return &u, nil
}

// Create inserts a user and returns the stored row.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, pkgerrors.NewInternalError("failed to create user", errors.New("user cannot be nil"))
	}

	model := UserSchema{
		Email:    u.Email,
		Password: u.Password,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			logger.WithContext(ctx, r.log).Warn("duplicate email rejected by storage")
			return nil, pkgerrors.ErrUserAlreadyExists
		}
		logger.WithContext(ctx, r.log).Error("failed to create user in db", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to create user", err)
	}

	logger.WithContext(ctx, r.log).Info("user created in db", zap.Int64("id", model.ID))
	created := model.toDomain()
	return &created, nil
}

// UpdatePassword replaces the stored password value of user id.
func (r *UserRepoPG) UpdatePassword(ctx context.Context, id int64, password string) error {
	res := r.db.WithContext(ctx).Model(&UserSchema{}).Where("id = ?", id).Update("password", password)
	if res.Error != nil {
		logger.WithContext(ctx, r.log).Error("failed to update password in db", zap.Error(res.Error), zap.Int64("id", id))
		return pkgerrors.NewInternalError("failed to update password", res.Error)
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrUserNotFound
	}
	return nil
}

// Delete removes a user and returns the removed row.
func (r *UserRepoPG) Delete(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model, id).Error; err != nil {
			return err
		}
		return tx.Delete(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrUserNotFound
		}
		logger.WithContext(ctx, r.log).Error("failed to delete user in db", zap.Error(err), zap.Int64("id", id))
		return nil, pkgerrors.NewInternalError("failed to delete user", err)
	}

	logger.WithContext(ctx, r.log).Info("user deleted in db", zap.Int64("id", id))
	deleted := model.toDomain()
	return &deleted, nil
}

func (m UserSchema) toDomain() user.User {
	return user.User{
		ID:       m.ID,
		Email:    m.Email,
		Password: m.Password,
	}
}
