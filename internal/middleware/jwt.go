package middleware

import (
	"net/http"
	"strings"

	"pulseboard/internal/utils"

	"github.com/gin-gonic/gin"
)

// bearerToken 从 Authorization 头提取 Bearer 令牌
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// JWTAuth 强制鉴权：没有有效的访问令牌直接 401
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(secret, tokenString)
		if err != nil || claims.TokenType != utils.TokenTypeAccess {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// 存入 Gin Context，handler 里通过 c.GetUint("userID") 读取
		c.Set("userID", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// OptionalJWTAuth 可选鉴权：看板列表/详情对匿名用户开放公共内容，
// 带了有效令牌就记录身份，没带或无效一律按匿名处理 (userID 缺省为 0)
func OptionalJWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString != "" {
			if claims, err := utils.ParseToken(secret, tokenString); err == nil && claims.TokenType == utils.TokenTypeAccess {
				c.Set("userID", claims.UserID)
				c.Set("username", claims.Username)
				c.Set("role", claims.Role)
			}
		}
		c.Next()
	}
}
