package errcode

import (
	"errors"
	"net/http"

	"resumeEditor/internal/resume"
	"resumeEditor/internal/share"
)

// Code 是响应信封 error 字段中的机器可读错误码，服务端与客户端共用。
type Code string

const (
	NotFound         Code = "NOT_FOUND"
	Invalid          Code = "INVALID"
	Conflict         Code = "CONFLICT"
	Unauthorized     Code = "UNAUTHORIZED"
	SlugExhausted    Code = "SLUG_EXHAUSTED"
	ShareExpired     Code = "SHARE_EXPIRED"
	ShareInactive    Code = "SHARE_INACTIVE"
	PasswordRequired Code = "PASSWORD_REQUIRED"
	PasswordMismatch Code = "PASSWORD_MISMATCH"
	RateLimited      Code = "RATE_LIMITED"
	Internal         Code = "INTERNAL"
)

// HTTPStatus 返回错误码对应的状态码，未知错误码按 500 处理。
func (c Code) HTTPStatus() int {
	switch c {
	case NotFound:
		return http.StatusNotFound
	case Invalid:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case Unauthorized, PasswordRequired, PasswordMismatch:
		return http.StatusUnauthorized
	case SlugExhausted:
		return http.StatusServiceUnavailable
	case ShareExpired, ShareInactive:
		return http.StatusGone
	case RateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

var table = []struct {
	code Code
	err  error
}{
	{NotFound, resume.ErrNotFound},
	{NotFound, share.ErrNotFound},
	{Invalid, resume.ErrInvalid},
	{Conflict, resume.ErrConflict},
	{SlugExhausted, share.ErrSlugExhausted},
	{ShareExpired, share.ErrExpired},
	{ShareInactive, share.ErrInactive},
	{PasswordRequired, share.ErrPasswordRequired},
	{PasswordMismatch, share.ErrPasswordMismatch},
}

// Of classifies a domain error; unknown errors map to Internal.
func Of(err error) Code {
	for _, row := range table {
		if errors.Is(err, row.err) {
			return row.code
		}
	}
	return Internal
}

// Err 是 Of 的反向映射，供客户端把错误码还原为领域错误；没有对应领域错误时返回 nil。
func (c Code) Err() error {
	for _, row := range table {
		if row.code == c {
			return row.err
		}
	}
	return nil
}
