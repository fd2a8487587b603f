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
	CodeUnauthorized       ErrorCode = "1002"
	CodeForbidden          ErrorCode = "1003"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 认证授权错误 (2xxx)
	CodeTokenExpired ErrorCode = "2001"
	CodeTokenInvalid ErrorCode = "2002"
	CodeTokenMissing ErrorCode = "2003"

	// 资源错误 (3xxx)
	CodeConversationNotFound ErrorCode = "3001"
	CodeMessageNotFound      ErrorCode = "3002"
	CodeAssetNotFound        ErrorCode = "3003"
	CodeUserNotFound         ErrorCode = "3004"
	CodeUserAlreadyExists    ErrorCode = "3005"

	// 规划/生成错误 (4xxx)
	// CodeValidation 回合输入无效（无文本也无图片等），拒绝于任何状态变更之前
	CodeValidation ErrorCode = "4001"
	// CodeConfiguration 缺少必需的提供商凭据或未知的提供商选择
	CodeConfiguration ErrorCode = "4002"
	// CodeProtocol 推理引擎返回了非 JSON、缺少 type、或 final 无 final_prompt
	CodeProtocol ErrorCode = "4003"
	// CodeProviderTransient 认证/限流/连接类的提供商瞬时故障
	CodeProviderTransient ErrorCode = "4004"
	// CodeGenerationFailed 媒体生成提供商调用失败
	CodeGenerationFailed ErrorCode = "4005"

	// 外部服务错误 (5xxx)
	CodeDatabaseError ErrorCode = "5001"
	CodeCacheError    ErrorCode = "5002"
	CodeStorageError  ErrorCode = "5003"
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

// WithDetail 返回携带详细信息的副本，不修改原错误
func (e *AppError) WithDetail(detail string) *AppError {
	ne := *e
	ne.Detail = detail
	return &ne
}

// WithError 返回携带底层错误的副本，不修改原错误
func (e *AppError) WithError(err error) *AppError {
	ne := *e
	ne.Err = err
	return &ne
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
	case CodeInvalidParam, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeTokenExpired, CodeTokenInvalid, CodeTokenMissing:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound, CodeConversationNotFound, CodeMessageNotFound, CodeAssetNotFound, CodeUserNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeUserAlreadyExists:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeProviderTransient, CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case CodeProtocol:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam    = New(CodeInvalidParam, "invalid parameter")
	ErrUnauthorized    = New(CodeUnauthorized, "unauthorized")
	ErrForbidden       = New(CodeForbidden, "forbidden")
	ErrNotFound        = New(CodeNotFound, "resource not found")
	ErrConflict        = New(CodeConflict, "resource conflict")
	ErrTooManyRequests = New(CodeTooManyRequests, "too many requests")
	ErrInternalError   = New(CodeInternalError, "internal server error")

	ErrTokenExpired = New(CodeTokenExpired, "token expired")
	ErrTokenInvalid = New(CodeTokenInvalid, "token invalid")
	ErrTokenMissing = New(CodeTokenMissing, "token missing")

	ErrConversationNotFound = New(CodeConversationNotFound, "conversation not found")
)

// Validation 创建回合输入校验错误
func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

// Configuration 创建配置错误（缺少凭据、未知提供商）
func Configuration(message string) *AppError {
	return New(CodeConfiguration, message)
}

// Protocol 创建协议错误（推理引擎输出不符合约定）
func Protocol(message string) *AppError {
	return New(CodeProtocol, message)
}

// IsCode 检查错误是否携带指定错误码
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

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
