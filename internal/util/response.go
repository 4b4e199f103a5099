package util

import (
	"errors"
	"net/http"
	"raid_checker_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error",
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString(RequestIDKey)),
		zap.Error(err),
	)
	InternalServerError(c)
}

var (
	notFoundErrors = []error{
		ErrAccountNotFound, ErrCharacterNotFound, ErrRaidNotFound,
		ErrGateCompletionNotFound, ErrPartyCompletionNotFound,
	}
	conflictErrors = []error{
		ErrAlreadyCompleted, ErrNotCompleted, ErrCrossDifficultyConflict,
		ErrDuplicateAccount, ErrUsernameTaken, ErrCharacterExists, ErrStaleWeek,
	}
	validationErrors = []error{
		ErrEmptyParty, ErrInvalidPartySize, ErrDuplicateCharacter, ErrInvalidGoldPriority,
		ErrNotEligible, ErrUnknownPartyType,
	}
)

func matches(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// RespondError 将业务错误映射为 HTTP 状态码，冲突类错误原样返回信息供前端展示，未知错误记录日志并返回 500
func RespondError(c *gin.Context, err error) {
	switch {
	case matches(err, notFoundErrors):
		Error(c, http.StatusNotFound, err.Error())
	case matches(err, conflictErrors):
		Error(c, http.StatusConflict, err.Error())
	case matches(err, validationErrors):
		BadRequest(c, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		Forbidden(c)
	case errors.Is(err, ErrProviderUnavailable):
		Error(c, http.StatusBadGateway, err.Error())
	default:
		LogInternalError(c, err)
	}
}
