package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"menu-service/internal/usecase/user"
	pkgerrors "menu-service/pkg/errors"
	"menu-service/pkg/logger"
)

// UserHandler handles HTTP requests for /usuarios
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// CredentialsRequest is the body of POST /usuarios and POST /usuarios/login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents the HTTP response for user data. The password is never included.
type UserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	Message string       `json:"message"`
	Usuario UserResponse `json:"usuario"`
}

// DeleteUserResponse is returned after a user is removed.
type DeleteUserResponse struct {
	Mensaje string       `json:"mensaje"`
	Usuario UserResponse `json:"usuario"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email}
}

// ListUsers handles GET /usuarios
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.uc.ListUsers(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i])
	}
	c.JSON(http.StatusOK, out)
}

// GetUser handles GET /usuarios/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := parseID(c, pkgerrors.ErrUserNotFound)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	u, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(u))
}

// CreateUser handles POST /usuarios
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid create user request", zap.Error(err))
		handleError(c, h.log, bindError(err, ""))
		return
	}

	u, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, toUserResponse(u))
}

// Login handles POST /usuarios/login
func (h *UserHandler) Login(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid login request", zap.Error(err))
		handleError(c, h.log, bindError(err, ""))
		return
	}

	u, err := h.uc.Authenticate(c.Request.Context(), user.AuthenticateRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Message: "Autenticación exitosa",
		Usuario: toUserResponse(u),
	})
}

// DeleteUser handles DELETE /usuarios/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, err := parseID(c, pkgerrors.ErrUserNotFound)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	u, err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: id})
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, DeleteUserResponse{
		Mensaje: "Usuario eliminado correctamente",
		Usuario: toUserResponse(u),
	})
}
