package roster

import "errors"

// Kind 是排班引擎对外暴露的错误分类
// handler 层根据分类决定响应内容，不需要解析错误信息字符串
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
	KindDuplicateKey    Kind = "duplicate_key"
	KindConflict        Kind = "conflict"
	KindOutOfRange      Kind = "out_of_range"
)

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// KindOf 返回错误的分类，非本包的错误返回空字符串
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
