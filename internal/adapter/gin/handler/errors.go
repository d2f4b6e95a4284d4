package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	pkgerrors "menu-service/pkg/errors"
	"menu-service/pkg/logger"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleError converts usecase errors to HTTP responses. Internal causes are
// logged and never written to the body.
func handleError(c *gin.Context, log *zap.Logger, err error) {
	status, msg := pkgerrors.Classify(err)

	l := logger.WithContext(c.Request.Context(), log)
	if status >= 500 {
		l.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	} else {
		l.Debug("request rejected", zap.Int("status", status), zap.String("reason", msg))
	}

	c.JSON(status, ErrorResponse{Error: msg})
}

// bindError maps a JSON binding failure to a 400. Missing required fields get
// fieldsMsg; anything else (syntax, type mismatch) gets the generic body message.
func bindError(err error, fieldsMsg string) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && fieldsMsg != "" {
		return pkgerrors.NewValidationError(verrs[0].Field(), fieldsMsg)
	}
	return pkgerrors.NewValidationError("", pkgerrors.MsgInvalidBody)
}

// parseID reads the :id path parameter. Anything that is not a positive
// integer is reported as notFound.
func parseID(c *gin.Context, notFound error) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, notFound
	}
	return id, nil
}
