package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类
type Kind string

// 错误分类常量
const (
	KindUnknown     Kind = "unknown"
	KindConfig      Kind = "config"      // 配置缺失，运行前即失败
	KindAggregation Kind = "aggregation" // 统计快照任一查询失败
	KindValidation  Kind = "validation"  // 请求参数非法
	KindUnavailable Kind = "unavailable" // 下游暂不可用
)

// Error 错误结构（包含可重试标记）
type Error struct {
	Kind       Kind   `json:"kind"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	DevDetails string `json:"dev_details,omitempty"`
	cause      error
}

// Error 实现 error 接口
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap 支持 errors.Is / errors.As
func (e *Error) Unwrap() error {
	return e.cause
}

// Config 配置错误（不可重试）
func Config(message string) *Error {
	return &Error{Kind: KindConfig, Code: http.StatusInternalServerError, Message: message}
}

// Aggregation 统计聚合错误，数据库抖动时可重试
func Aggregation(err error) *Error {
	return &Error{
		Kind:       KindAggregation,
		Code:       http.StatusInternalServerError,
		Message:    "aggregate stats failed",
		Retryable:  true,
		DevDetails: fmt.Sprintf("%+v", err),
		cause:      err,
	}
}

// Validation 参数错误（不可重试）
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Code: http.StatusBadRequest, Message: message}
}

// Unavailable 下游不可用（可重试）
func Unavailable(message string, err error) *Error {
	return &Error{
		Kind:      KindUnavailable,
		Code:      http.StatusServiceUnavailable,
		Message:   message,
		Retryable: true,
		cause:     err,
	}
}

// Retriable 创建可重试错误（网络错误、临时故障等）
func Retriable(message string) *Error {
	return &Error{
		Kind:      KindUnknown,
		Code:      http.StatusInternalServerError,
		Message:   message,
		Retryable: true,
	}
}

// NonRetriable 创建不可重试错误（参数错误、业务规则错误等）
func NonRetriable(message string) *Error {
	return &Error{
		Kind:      KindUnknown,
		Code:      http.StatusBadRequest,
		Message:   message,
		Retryable: false,
	}
}

// Wrap 包装错误（已是 *Error 则原样返回）
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}

	var e *Error
	if errors.As(err, &e) {
		return e
	}

	// 默认为不可重试错误
	return &Error{
		Kind:       KindUnknown,
		Code:       http.StatusInternalServerError,
		Message:    err.Error(),
		Retryable:  false,
		DevDetails: fmt.Sprintf("%+v", err),
		cause:      err,
	}
}

// IsKind 判断错误分类
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsRetryable 判断是否可重试
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// HTTPStatus 错误对应的 HTTP 状态码
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Code != 0 {
		return e.Code
	}
	return http.StatusInternalServerError
}
