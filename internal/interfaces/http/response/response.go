package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainerrors "propdesk.backend/internal/domain/errors"
	"propdesk.backend/pkg/logger"
	"propdesk.backend/pkg/utils"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Paginated sends a page of items with its metadata
func Paginated(c *gin.Context, items interface{}, total int64, p utils.PaginationParams) {
	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"meta":  utils.CalculateMeta(total, p),
	})
}

// Error maps err to its HTTP status and sends it. Internal errors are logged
// and their details withheld from the client.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "Request failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
		"error":   appErr.Message, // Backward compatibility
	})
}

// ErrorWithError sends an error response with a specific status, code and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    code,
		"message": message,
		"error":   message,
	})
}

// BindError reports a request body or query that failed validation.
func BindError(c *gin.Context, err error) {
	ErrorWithError(c, http.StatusBadRequest, domainerrors.CodeInvalidInput, err.Error())
}
