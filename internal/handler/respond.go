package handler

import (
	"log"
	"net/http"

	"pulseboard/internal/middleware"
	"pulseboard/internal/service"

	"github.com/gin-gonic/gin"
)

// fail 把 service 层的业务错误映射为 HTTP 状态码
// 冲突类错误按约定返回 400 + 描述信息，而不是 409
func fail(c *gin.Context, err error) {
	if e := service.AsError(err); e != nil {
		status := http.StatusInternalServerError
		switch e.Kind {
		case service.KindValidation, service.KindConflict:
			status = http.StatusBadRequest
		case service.KindUnauthorized:
			status = http.StatusUnauthorized
		case service.KindForbidden:
			status = http.StatusForbidden
		case service.KindNotFound:
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": e.Message})
		return
	}

	// 带上 Trace ID，方便和前端拿到的 X-Trace-Id 对上
	log.Printf("❌ 内部错误 [trace=%s]: %v", c.GetString(middleware.TraceContextKey), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
