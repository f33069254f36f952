// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"z-reader-session-api/internal/interfaces/http/dto"
	"z-reader-session-api/pkg/errors"
)

// respondError 将应用错误映射为 HTTP 错误响应。
// AppError 自带 HTTP 状态码与错误码，其余错误一律按 500 处理。
func respondError(c *gin.Context, err error) {
	appErr := errors.AsAppError(err)
	dto.ErrorWithDetail(c, appErr.HTTPStatus, appErr.Message, &dto.ErrorDetail{
		ErrorCode: string(appErr.Code),
		Details:   appErr.Detail,
	})
}
