// Package resp 统一 HTTP 响应的写出：成功时直接输出资源 JSON，失败时输出错误信封。
package resp

import (
	"encoding/json"
	"net/http"
)

// Code 业务错误码
type Code string

const (
	CodeInvalidParam  Code = "INVALID_PARAM"
	CodeNotFound      Code = "NOT_FOUND"
	CodeTimeout       Code = "TIMEOUT"
	CodeInternalError Code = "INTERNAL_ERROR"
)

// ErrorBody 错误响应信封
type ErrorBody struct {
	Code      Code   `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Details   string `json:"details,omitempty"`
}

// JSON 以指定状态码写出 JSON
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// OK 写出 200 和资源本身
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created 写出 201 和新建的资源
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// NoContent 写出 204
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error 写出错误信封
func Error(w http.ResponseWriter, status int, code Code, message, reqID, details string) {
	JSON(w, status, ErrorBody{
		Code:      code,
		Message:   message,
		RequestID: reqID,
		Details:   details,
	})
}
