package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeEditor/internal/api/middleware"
	"resumeEditor/internal/errcode"
)

// Envelope 是所有 /v1 响应的统一外层结构。
type Envelope struct {
	Success bool         `json:"success"`
	Data    any          `json:"data,omitempty"`
	Error   errcode.Code `json:"error,omitempty"`
	Message string       `json:"message,omitempty"`
}

func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func Fail(c *gin.Context, code errcode.Code, msg string) {
	c.JSON(code.HTTPStatus(), Envelope{Error: code, Message: msg})
}

func AbortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{Error: errcode.Unauthorized, Message: "unauthorized"})
}

func BadRequest(c *gin.Context, msg string) { Fail(c, errcode.Invalid, msg) }

// RespondError 按领域错误选择错误码；未知错误只记录日志，不把细节返回给调用方。
func RespondError(c *gin.Context, err error) {
	code := errcode.Of(err)
	if code == errcode.Internal {
		middleware.LoggerFromContext(c).Error("request failed", slog.Any("error", err))
		Fail(c, code, "internal error")
		return
	}
	Fail(c, code, err.Error())
}
