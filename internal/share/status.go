package share

import "errors"

// Status 是公开访问结果的分类，客户端据此渲染不同页面。
type Status string

const (
	StatusOK               Status = "ok"
	StatusNotFound         Status = "not-found"
	StatusExpired          Status = "expired"
	StatusInactive         Status = "inactive"
	StatusPasswordRequired Status = "password-required"
)

// StatusOf classifies a Resolve error. Unknown errors map to not-found so a
// public caller learns nothing about internal failures.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrExpired):
		return StatusExpired
	case errors.Is(err, ErrInactive):
		return StatusInactive
	case errors.Is(err, ErrPasswordRequired), errors.Is(err, ErrPasswordMismatch):
		return StatusPasswordRequired
	}
	return StatusNotFound
}
