package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stagepass/internal/shared/apperrors"
)

// RespondJSON writes a success envelope.
func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     "success",
		StatusCode: code,
		Message:    message,
		Data:       data,
	})
}

// RespondError maps the error taxonomy to HTTP status codes so clients can
// tell "doesn't exist" from "exists but busy" from "you sent garbage".
func RespondError(c *gin.Context, err error) {
	code := http.StatusInternalServerError

	switch {
	case apperrors.IsNotFound(err):
		code = http.StatusNotFound
	case apperrors.IsValidation(err):
		code = http.StatusBadRequest
	case apperrors.IsConflict(err):
		code = http.StatusConflict
	case apperrors.IsFatal(err):
		code = http.StatusInternalServerError
	}

	c.JSON(code, StandardApiResponse{
		Status:     "error",
		StatusCode: code,
		Message:    err.Error(),
	})
}
