package response

import (
	"Trendspotter/internal/api/dto"
	"Trendspotter/internal/service"
	stdjson "encoding/json"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// 业务码写在响应体中，HTTP 状态码恒为 200
const (
	Ok                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	TooManyRequests     = 429
	InternalServerError = 500
)

func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, dto.Response{
		Code:    Ok,
		Message: "success",
		Data:    data,
	})
}

func Fail(c *gin.Context, businessCode int, message string) {
	c.JSON(http.StatusOK, dto.Response{
		Code:    businessCode,
		Message: message,
		Data:    nil,
	})
}

// Error 参数错误与业务错误映射为对应业务码，其余错误只记录日志、不向客户端暴露细节
func Error(c *gin.Context, err error) {
	code, msg, known := classify(err)
	if !known {
		log.ErrorContext(c.Request.Context(), "Error", "path", c.FullPath(), "err", err)
	}
	Fail(c, code, msg)
}

func classify(err error) (int, string, bool) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return BadRequest, fmt.Sprintf("参数错误: %s", ve[0].Field()), true
	}
	if isJSONError(err) {
		return BadRequest, "Json错误", true
	}

	if code, ok := service.ErrorMap[err]; ok {
		return code, err.Error(), true
	}
	for target, code := range service.ErrorMap {
		if errors.Is(err, target) {
			return code, target.Error(), true
		}
	}
	return InternalServerError, service.UnExpectedError.Error(), false
}

// isJSONError gin 绑定使用标准库解码，服务内部使用 go-json
func isJSONError(err error) bool {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	var stdTypeErr *stdjson.UnmarshalTypeError
	var stdSyntaxErr *stdjson.SyntaxError
	return errors.As(err, &typeErr) || errors.As(err, &syntaxErr) ||
		errors.As(err, &stdTypeErr) || errors.As(err, &stdSyntaxErr)
}
