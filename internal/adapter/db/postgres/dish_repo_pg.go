package postgres

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"menu-service/internal/domain/dish"
	pkgerrors "menu-service/pkg/errors"
	"menu-service/pkg/logger"
)

// DishRepoPG implements the dish Repository using GORM.
type DishRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewDishRepoPG creates a new instance of DishRepoPG.
func NewDishRepoPG(db *gorm.DB, log *zap.Logger) *DishRepoPG {
	return &DishRepoPG{db: db, log: log}
}

// List returns every dish ordered by id.
func (r *DishRepoPG) List(ctx context.Context) ([]dish.Dish, error) {
	var models []DishSchema
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		logger.WithContext(ctx, r.log).Error("failed to list dishes from db", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to list dishes", err)
	}

	dishes := make([]dish.Dish, len(models))
	for i, m := range models {
		dishes[i] = m.toDomain()
	}
	return dishes, nil
}

// GetByID retrieves a dish by primary key.
func (r *DishRepoPG) GetByID(ctx context.Context, id int64) (*dish.Dish, error) {
	var model DishSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrDishNotFound
		}
		logger.WithContext(ctx, r.log).Error("failed to get dish from db", zap.Error(err), zap.Int64("id", id))
		return nil, pkgerrors.NewInternalError("failed to get dish", err)
	}

	d := model.toDomain()
	return &d, nil
}

// Create inserts a dish as given and returns the stored row.
func (r *DishRepoPG) Create(ctx context.Context, d *dish.Dish) (*dish.Dish, error) {
	if d == nil {
		return nil, pkgerrors.NewInternalError("failed to create dish", errors.New("dish cannot be nil"))
	}

	model := fromDomain(d)
	model.ID = 0

	// precio is rounded by the column type, so the reply comes from the stored row.
	var stored DishSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		return tx.First(&stored, model.ID).Error
	})
	if err != nil {
		logger.WithContext(ctx, r.log).Error("failed to create dish in db", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to create dish", err)
	}

	logger.WithContext(ctx, r.log).Info("dish created in db", zap.Int64("id", stored.ID))
	created := stored.toDomain()
	return &created, nil
}

// Update replaces every column of dish d.ID, zero values included, and returns the stored row.
func (r *DishRepoPG) Update(ctx context.Context, d *dish.Dish) (*dish.Dish, error) {
	if d == nil {
		return nil, pkgerrors.NewInternalError("failed to update dish", errors.New("dish cannot be nil"))
	}

	var model DishSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&DishSchema{}).Where("id = ?", d.ID).Updates(map[string]any{
			"nombre":      d.Nombre,
			"descripcion": d.Descripcion,
			"precio":      d.Precio,
			"img":         d.Img,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&model, d.ID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrDishNotFound
		}
		logger.WithContext(ctx, r.log).Error("failed to update dish in db", zap.Error(err), zap.Int64("id", d.ID))
		return nil, pkgerrors.NewInternalError("failed to update dish", err)
	}

	logger.WithContext(ctx, r.log).Info("dish updated in db", zap.Int64("id", model.ID))
	updated := model.toDomain()
	return &updated, nil
}

// Delete removes a dish and returns the removed row.
func (r *DishRepoPG) Delete(ctx context.Context, id int64) (*dish.Dish, error) {
	var model DishSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model, id).Error; err != nil {
			return err
		}
		return tx.Delete(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrDishNotFound
		}
		logger.WithContext(ctx, r.log).Error("failed to delete dish in db", zap.Error(err), zap.Int64("id", id))
		return nil, pkgerrors.NewInternalError("failed to delete dish", err)
	}

	logger.WithContext(ctx, r.log).Info("dish deleted in db", zap.Int64("id", id))
	deleted := model.toDomain()
	return &deleted, nil
}

func fromDomain(d *dish.Dish) DishSchema {
	return DishSchema{
		ID:          d.ID,
		Nombre:      d.Nombre,
		Descripcion: d.Descripcion,
		Precio:      d.Precio,
		Img:         d.Img,
	}
}

func (m DishSchema) toDomain() dish.Dish {
	return dish.Dish{
		ID:          m.ID,
		Nombre:      m.Nombre,
		Descripcion: m.Descripcion,
		Precio:      m.Precio,
		Img:         m.Img,
	}
}
