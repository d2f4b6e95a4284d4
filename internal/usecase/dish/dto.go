package dish

// CreateDishRequest represents the request payload for creating a dish.
type CreateDishRequest struct {
	Nombre      string  `validate:"required,max=255"`
	Descripcion string  `validate:"max=2000"`
	Precio      float64 `validate:"gte=0,lt=100000000"`
	Img         string  `validate:"max=2048"`
}

// UpdateDishRequest replaces every field of dish ID.
type UpdateDishRequest struct {
	ID          int64
	Nombre      string  `validate:"required,max=255"`
	Descripcion string  `validate:"max=2000"`
	Precio      float64 `validate:"gte=0,lt=100000000"`
	Img         string  `validate:"max=2048"`
}

// Dish represents a dish DTO.
type Dish struct {
	ID          int64
	Nombre      string
	Descripcion string
	Precio      float64
	Img         string
}
