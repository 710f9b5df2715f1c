package response

import (
	"net/http"

	"anoa.com/welfaredesk/internal/entity"
	"anoa.com/welfaredesk/pkg/apperror"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	AccountKey   = "account"
	AccountIDKey = "account_id"
	loggerKey    = "logger"
)

// Envelope is the body shape shared by every endpoint.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func Success(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, Envelope{Success: true, Message: message, Data: data})
}

func OK(c *gin.Context, data interface{}, message string) {
	Success(c, http.StatusOK, data, message)
}

func Created(c *gin.Context, data interface{}, message string) {
	Success(c, http.StatusCreated, data, message)
}

// Fail writes a failure envelope with an explicit status.
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Envelope{Success: false, Message: message, Data: nil})
}

// AbortFail is Fail for middleware: the chain stops here.
func AbortFail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Envelope{Success: false, Message: message, Data: nil})
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		Logger(c).Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	Fail(c, code, apperror.Message(err))
}

// CurrentAccount returns the account attached by the auth middleware.
func CurrentAccount(c *gin.Context) (*entity.Account, error) {
	value, exists := c.Get(AccountKey)
	if !exists {
		return nil, apperror.Unauthenticated("Token not provided.")
	}

	account, ok := value.(*entity.Account)
	if !ok || account == nil {
		return nil, apperror.Unauthenticated("Token not provided.")
	}

	return account, nil
}

// WithLogger stores the request-scoped logger.
func WithLogger(c *gin.Context, log *zap.Logger) {
	c.Set(loggerKey, log)
}

// Logger returns the request-scoped logger, or the global one.
func Logger(c *gin.Context) *zap.Logger {
	if value, exists := c.Get(loggerKey); exists {
		if log, ok := value.(*zap.Logger); ok {
			return log
		}
	}
	return zap.L()
}
