package dish

// Dish represents a menu item ("plato").
type Dish struct {
	ID          int64
	Nombre      string
	Descripcion string
	Precio      float64
	Img         string // image URL or path
}
