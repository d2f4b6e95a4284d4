package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"menu-service/internal/usecase/dish"
	pkgerrors "menu-service/pkg/errors"
	"menu-service/pkg/logger"
)

const msgDishFieldsRequired = "Los campos nombre, descripcion, precio e img son obligatorios"

// DishHandler handles HTTP requests for /platos
type DishHandler struct {
	uc  dish.Usecase
	log *zap.Logger
}

// NewDishHandler creates a new DishHandler instance
func NewDishHandler(uc dish.Usecase, log *zap.Logger) *DishHandler {
	return &DishHandler{uc: uc, log: log}
}

// CreateDishRequest is the body of POST /platos.
type CreateDishRequest struct {
	Nombre      string  `json:"nombre"`
	Descripcion string  `json:"descripcion"`
	Precio      float64 `json:"precio"`
	Img         string  `json:"img"`
}

// UpdateDishRequest is the body of PUT /platos/:id. Every field must be
// present; pointers tell an omitted field from a zero value.
type UpdateDishRequest struct {
	Nombre      *string  `json:"nombre" binding:"required"`
	Descripcion *string  `json:"descripcion" binding:"required"`
	Precio      *float64 `json:"precio" binding:"required"`
	Img         *string  `json:"img" binding:"required"`
}

// DishResponse represents the HTTP response for dish data
type DishResponse struct {
	ID          int64   `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion string  `json:"descripcion"`
	Precio      float64 `json:"precio"`
	Img         string  `json:"img"`
}

// DishMessageResponse wraps a dish with a confirmation message.
type DishMessageResponse struct {
	Mensaje string       `json:"mensaje"`
	Plato   DishResponse `json:"plato"`
}

func toDishResponse(d *dish.Dish) DishResponse {
	return DishResponse{
		ID:          d.ID,
		Nombre:      d.Nombre,
		Descripcion: d.Descripcion,
		Precio:      d.Precio,
		Img:         d.Img,
	}
}

// ListDishes handles GET /platos
func (h *DishHandler) ListDishes(c *gin.Context) {
	dishes, err := h.uc.ListDishes(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	out := make([]DishResponse, len(dishes))
	for i := range dishes {
		out[i] = toDishResponse(&dishes[i])
	}
	c.JSON(http.StatusOK, out)
}

// GetDish handles GET /platos/:id
func (h *DishHandler) GetDish(c *gin.Context) {
	id, err := parseID(c, pkgerrors.ErrDishNotFound)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	d, err := h.uc.GetDish(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toDishResponse(d))
}

// CreateDish handles POST /platos
func (h *DishHandler) CreateDish(c *gin.Context) {
	var req CreateDishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid create dish request", zap.Error(err))
		handleError(c, h.log, bindError(err, ""))
		return
	}

	d, err := h.uc.CreateDish(c.Request.Context(), dish.CreateDishRequest{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Precio:      req.Precio,
		Img:         req.Img,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toDishResponse(d))
}

// UpdateDish handles PUT /platos/:id
func (h *DishHandler) UpdateDish(c *gin.Context) {
	id, err := parseID(c, pkgerrors.ErrDishNotFound)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	var req UpdateDishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid update dish request", zap.Int64("id", id), zap.Error(err))
		handleError(c, h.log, bindError(err, msgDishFieldsRequired))
		return
	}

	d, err := h.uc.UpdateDish(c.Request.Context(), dish.UpdateDishRequest{
		ID:          id,
		Nombre:      *req.Nombre,
		Descripcion: *req.Descripcion,
		Precio:      *req.Precio,
		Img:         *req.Img,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, DishMessageResponse{
		Mensaje: "Plato actualizado correctamente",
		Plato:   toDishResponse(d),
	})
}

// DeleteDish handles DELETE /platos/:id
func (h *DishHandler) DeleteDish(c *gin.Context) {
	id, err := parseID(c, pkgerrors.ErrDishNotFound)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	d, err := h.uc.DeleteDish(c.Request.Context(), id)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, DishMessageResponse{
		Mensaje: "Plato eliminado correctamente",
		Plato:   toDishResponse(d),
	})
}
