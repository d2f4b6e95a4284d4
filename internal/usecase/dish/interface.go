package dish

import "context"

// Usecase defines the interface for dish business logic operations.
type Usecase interface {
	ListDishes(ctx context.Context) ([]Dish, error)
	GetDish(ctx context.Context, id int64) (*Dish, error)
	CreateDish(ctx context.Context, in CreateDishRequest) (*Dish, error)
	UpdateDish(ctx context.Context, in UpdateDishRequest) (*Dish, error)
	DeleteDish(ctx context.Context, id int64) (*Dish, error)
}
