package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// UserSchema represents the database schema for the usuarios table.
type UserSchema struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Email    string `gorm:"size:255;not null;uniqueIndex"` // uniqueness is enforced here, not by the caller's pre-check
	Password string `gorm:"size:255;not null"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "usuarios"
}

// DishSchema represents the database schema for the platos table.
type DishSchema struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	Nombre      string  `gorm:"size:255;not null"`
	Descripcion string  `gorm:"type:text"`
	Precio      float64 `gorm:"type:numeric(10,2);not null;default:0"`
	Img         string  `gorm:"type:text"`
}

// TableName specifies the table name for the DishSchema model.
func (DishSchema) TableName() string {
	return "platos"
}

// Migrate creates or updates the usuarios and platos tables.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&UserSchema{}, &DishSchema{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

const pgUniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique constraint failure on
// PostgreSQL or SQLite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
