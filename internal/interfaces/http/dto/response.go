// Package dto 定义 HTTP 请求响应结构
package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/VenkataAditya897/vizzy-conversational/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	TraceID string `json:"trace_id,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    string(apperrors.CodeSuccess),
		Message: "success",
		Data:    data,
		TraceID: c.GetString("trace_id"),
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{
		Code:    string(apperrors.CodeSuccess),
		Message: "success",
		Data:    data,
		TraceID: c.GetString("trace_id"),
	})
}

// Error 错误响应
//
// AppError 按携带的 HTTP 状态码返回，其余错误一律 500。
func Error(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)

	msg := appErr.Message
	if appErr.Detail != "" {
		msg = msg + ": " + appErr.Detail
	}
	c.JSON(appErr.HTTPStatus, Response{
		Code:    string(appErr.Code),
		Message: msg,
		TraceID: c.GetString("trace_id"),
	})
}
