package errors

import (
	"errors"
	"fmt"
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("record was modified by another request, reload and retry")

// Kind 业务错误分类，由接口层映射为 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthorization
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// AppError 带稳定错误码与可选字段级信息的业务错误
type AppError struct {
	Kind    Kind
	Code    int
	Message string
	Fields  map[string]string
}

func (e *AppError) Error() string {
	return e.Message
}

// WithField 返回附加一条字段信息的副本，副本在 errors.Is 下仍与 e 匹配
func (e *AppError) WithField(field, msg string) *AppError {
	fields := make(map[string]string, len(e.Fields)+1)
	for k, v := range e.Fields {
		fields[k] = v
	}
	fields[field] = msg
	return &AppError{Kind: e.Kind, Code: e.Code, Message: e.Message, Fields: fields}
}

// Is 按 Kind 与 Code 比较，WithField 之后仍能匹配哨兵错误
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// Validation 创建校验错误
func Validation(code int, msg string) *AppError {
	return &AppError{Kind: KindValidation, Code: code, Message: msg}
}

// Authorization 创建权限错误
func Authorization(code int, msg string) *AppError {
	return &AppError{Kind: KindAuthorization, Code: code, Message: msg}
}

// NotFound 创建资源不存在错误
func NotFound(code int, msg string) *AppError {
	return &AppError{Kind: KindNotFound, Code: code, Message: msg}
}

// Conflict 创建冲突错误
func Conflict(code int, msg string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: msg}
}

// Validationf 格式化创建一次性校验错误
func Validationf(code int, format string, args ...interface{}) *AppError {
	return Validation(code, fmt.Sprintf(format, args...))
}

// KindOf 返回 err 的 Kind，非 AppError 时为 KindInternal
// ErrOptimisticLock 视为冲突
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	if errors.Is(err, ErrOptimisticLock) {
		return KindConflict
	}
	return KindInternal
}
