package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"lifeblood/backend/internal/model"
	"lifeblood/backend/pkg/jwt"
	"lifeblood/backend/pkg/response"
)

// 与 handler.ContextKeySession / ContextKeyClaims 保持一致
const (
	sessionKey = "session"
	claimsKey  = "claims"
)

// TokenChecker Token 黑名单查询（Redis 实现，可为 nil）
type TokenChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token，
// 通过后将会话与声明注入上下文。blacklist 为 nil 或查询出错时降级放行
func JWTAuth(jwtMgr *jwt.Manager, blacklist TokenChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if claims.TokenType != jwt.TokenTypeAccess {
			response.Unauthorized(c, 10002, "Token 类型无效")
			c.Abort()
			return
		}

		if blacklist != nil {
			revoked, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
			if err == nil && revoked {
				response.Unauthorized(c, 10002, "Token 已注销")
				c.Abort()
				return
			}
		}

		c.Set(sessionKey, model.Session{
			AccountID:    claims.AccountID,
			AccountType:  claims.AccountType,
			HospitalCode: claims.HospitalCode,
		})
		c.Set(claimsKey, claims)

		c.Next()
	}
}

// RequireAccountType 账号类型权限中间件
// 检查当前会话是否属于指定账号类型之一
func RequireAccountType(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get(sessionKey)
		if !exists {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		session, _ := v.(model.Session)
		for _, t := range allowed {
			if session.AccountType == t {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}
