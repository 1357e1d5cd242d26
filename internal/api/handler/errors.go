package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/service"
	apperrors "github.com/SouhailBechchari/Emsoutenance-sub000/pkg/errors"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/response"
)

const codeBadRequest = 10001

// badRequest 请求体或查询参数绑定失败
func badRequest(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, codeBadRequest, "invalid request", err.Error())
}

// handleError 将业务错误映射为统一响应
func handleError(c *gin.Context, logger *zap.Logger, err error) {
	if errors.Is(err, service.ErrInvalidCredentials) {
		response.Unauthorized(c, 11001, "invalid email or password")
		return
	}
	if errors.Is(err, apperrors.ErrOptimisticLock) {
		response.Conflict(c, 10009, err.Error())
		return
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.InternalError(c)
		return
	}

	switch appErr.Kind {
	case apperrors.KindValidation:
		response.ValidationFailed(c, appErr.Code, appErr.Message, appErr.Fields)
	case apperrors.KindAuthorization:
		response.Forbidden(c, appErr.Code, appErr.Message)
	case apperrors.KindNotFound:
		response.NotFound(c, appErr.Code, appErr.Message)
	case apperrors.KindConflict:
		response.Conflict(c, appErr.Code, appErr.Message)
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.InternalError(c)
	}
}
