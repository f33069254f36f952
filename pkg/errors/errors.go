// Package errors 提供统一的错误定义
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 资源错误 (3xxx)
	CodeBookNotFound    ErrorCode = "3001"
	CodeChapterNotFound ErrorCode = "3002"
	CodeHeadingNotFound ErrorCode = "3003"
	CodeNoContent       ErrorCode = "3004"

	// 业务错误 (4xxx)
	CodeSessionNotReady   ErrorCode = "4001"
	CodeContentLoadFailed ErrorCode = "4002"
	CodeEnrichmentFailed  ErrorCode = "4003"
	CodeEnrichmentRunning ErrorCode = "4004"
	CodeBookmarkSync      ErrorCode = "4005"
	CodeLLMCallFailed     ErrorCode = "4006"

	// 外部服务错误 (5xxx)
	CodeDatabaseError        ErrorCode = "5001"
	CodeCacheError           ErrorCode = "5002"
	CodePersistenceCorrupted ErrorCode = "5003"
	CodeLLMProviderError     ErrorCode = "5004"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，便于 errors.Is 对预定义错误进行匹配
func (e *AppError) Is(target error) bool {
	var appErr *AppError
	if errors.As(target, &appErr) {
		return e.Code == appErr.Code
	}
	return false
}

// WithDetail 添加详细信息
func (e *AppError) WithDetail(detail string) *AppError {
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithError 添加底层错误
func (e *AppError) WithError(err error) *AppError {
	clone := *e
	clone.Err = err
	return &clone
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeNotFound, CodeBookNotFound, CodeChapterNotFound, CodeHeadingNotFound:
		return http.StatusNotFound
	case CodeNoContent:
		return http.StatusUnprocessableEntity
	case CodeConflict, CodeSessionNotReady:
		return http.StatusConflict
	case CodeEnrichmentRunning:
		return http.StatusAccepted
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeServiceUnavailable, CodeLLMProviderError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrBookNotFound    = New(CodeBookNotFound, "book not found")
	ErrChapterNotFound = New(CodeChapterNotFound, "chapter not found")
	ErrHeadingNotFound = New(CodeHeadingNotFound, "heading not found")
	ErrNoContent       = New(CodeNoContent, "no content structure found")

	ErrSessionNotReady   = New(CodeSessionNotReady, "session not ready")
	ErrContentLoadFailed = New(CodeContentLoadFailed, "content load failed")
	ErrEnrichmentFailed  = New(CodeEnrichmentFailed, "enrichment failed")
	ErrEnrichmentRunning = New(CodeEnrichmentRunning, "enrichment already running")
	ErrBookmarkSync      = New(CodeBookmarkSync, "bookmark sync failed")
	ErrLLMCallFailed     = New(CodeLLMCallFailed, "LLM call failed")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
