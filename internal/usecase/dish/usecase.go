package dish

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "menu-service/internal/domain/dish"
	pkgerrors "menu-service/pkg/errors"
	"menu-service/pkg/logger"
)

// Repository defines the interface for dish data access operations.
type Repository interface {
	List(ctx context.Context) ([]domain.Dish, error)
	GetByID(ctx context.Context, id int64) (*domain.Dish, error)
	Create(ctx context.Context, d *domain.Dish) (*domain.Dish, error)
	Update(ctx context.Context, d *domain.Dish) (*domain.Dish, error)
	Delete(ctx context.Context, id int64) (*domain.Dish, error)
}

// Service implements Usecase.
type Service struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
}

var _ Usecase = (*Service)(nil)

// New creates a new dish Service.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log, validate: validator.New()}
}

func toDTO(d *domain.Dish) *Dish {
	return &Dish{
		ID:          d.ID,
		Nombre:      d.Nombre,
		Descripcion: d.Descripcion,
		Precio:      d.Precio,
		Img:         d.Img,
	}
}

// ListDishes returns every dish.
func (s *Service) ListDishes(ctx context.Context) ([]Dish, error) {
	dishes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Dish, len(dishes))
	for i := range dishes {
		out[i] = *toDTO(&dishes[i])
	}
	return out, nil
}

// GetDish retrieves a dish by id.
func (s *Service) GetDish(ctx context.Context, id int64) (*Dish, error) {
	if id <= 0 {
		return nil, pkgerrors.ErrDishNotFound
	}

	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(d), nil
}

// CreateDish validates and stores a new dish.
func (s *Service) CreateDish(ctx context.Context, in CreateDishRequest) (*Dish, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("creating dish", zap.String("nombre", in.Nombre))

	if err := s.check(in, in.Precio); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Create(ctx, &domain.Dish{
		Nombre:      in.Nombre,
		Descripcion: in.Descripcion,
		Precio:      in.Precio,
		Img:         in.Img,
	})
	if err != nil {
		return nil, err
	}
	return toDTO(created), nil
}

// UpdateDish replaces all fields of an existing dish. Concurrent updates are
// last-write-wins.
func (s *Service) UpdateDish(ctx context.Context, in UpdateDishRequest) (*Dish, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("updating dish", zap.Int64("id", in.ID))

	if in.ID <= 0 {
		return nil, pkgerrors.ErrDishNotFound
	}
	if err := s.check(in, in.Precio); err != nil {
		log.Warn("validate failed", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.Update(ctx, &domain.Dish{
		ID:          in.ID,
		Nombre:      in.Nombre,
		Descripcion: in.Descripcion,
		Precio:      in.Precio,
		Img:         in.Img,
	})
	if err != nil {
		return nil, err
	}
	return toDTO(updated), nil
}

// DeleteDish deletes a dish and returns the removed record.
func (s *Service) DeleteDish(ctx context.Context, id int64) (*Dish, error) {
	logger.WithContext(ctx, s.log).Info("deleting dish", zap.Int64("id", id))

	if id <= 0 {
		return nil, pkgerrors.ErrDishNotFound
	}

	d, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(d), nil
}

func (s *Service) check(in any, precio float64) error {
	// NaN passes gte/lt comparisons in the validator.
	if math.IsNaN(precio) || math.IsInf(precio, 0) {
		return pkgerrors.NewValidationError("Precio", "El precio debe ser un número válido")
	}
	if err := s.validate.Struct(in); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return pkgerrors.NewValidationError("", err.Error())
	}

	e := verrs[0]
	switch {
	case e.Field() == "Nombre" && e.Tag() == "required":
		return pkgerrors.NewValidationError(e.Field(), "El nombre es obligatorio")
	case e.Field() == "Precio" && e.Tag() == "gte":
		return pkgerrors.NewValidationError(e.Field(), "El precio debe ser mayor o igual a 0")
	case e.Field() == "Precio":
		return pkgerrors.NewValidationError(e.Field(), "El precio excede el máximo permitido")
	case e.Tag() == "max":
		return pkgerrors.NewValidationError(e.Field(), fmt.Sprintf("%s excede la longitud máxima de %s", e.Field(), e.Param()))
	default:
		return pkgerrors.NewValidationError(e.Field(), fmt.Sprintf("%s es inválido", e.Field()))
	}
}
