package service

import "errors"

// Kind 错误分类，handler 层据此映射 HTTP 状态码
type Kind int

const (
	// KindValidation 字段/枚举非法 → 400
	KindValidation Kind = iota
	// KindUnauthorized 未登录或凭证无效 → 401
	KindUnauthorized
	// KindForbidden 已登录但角色/成员身份不足 → 403
	KindForbidden
	// KindNotFound 引用的用户/看板/反馈不存在 → 404
	KindNotFound
	// KindConflict 重复成员/重复点赞/创建者移除等冲突 → 400 + 描述信息
	KindConflict
)

// Error 带分类的业务错误，Message 直接返回给调用方
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func errValidation(msg string) error   { return &Error{Kind: KindValidation, Message: msg} }
func errUnauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Message: msg} }
func errForbidden(msg string) error    { return &Error{Kind: KindForbidden, Message: msg} }
func errNotFound(msg string) error     { return &Error{Kind: KindNotFound, Message: msg} }
func errConflict(msg string) error     { return &Error{Kind: KindConflict, Message: msg} }

// AsError 取出业务错误，非业务错误返回 nil
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
