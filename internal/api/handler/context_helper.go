package handler

import (
	"github.com/gin-gonic/gin"

	"lifeblood/backend/internal/model"
	"lifeblood/backend/pkg/jwt"
	"lifeblood/backend/pkg/response"
)

// 由 JWTAuth 中间件写入的上下文键
const (
	ContextKeySession = "session"
	ContextKeyClaims  = "claims"
)

// MustGetSession 从 Gin 上下文中安全提取当前会话。
// 如果 JWT 中间件未注入会话或会话缺少账号 ID / 类型，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetSession(c *gin.Context) (model.Session, bool) {
	v, exists := c.Get(ContextKeySession)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return model.Session{}, false
	}
	s, ok := v.(model.Session)
	if !ok || s.AccountID == "" || s.AccountType == "" {
		response.Unauthorized(c, 10002, "未认证")
		return model.Session{}, false
	}
	return s, true
}

// MustGetDonorID 当前会话必须是献血者
func MustGetDonorID(c *gin.Context) (string, bool) {
	s, ok := MustGetSession(c)
	if !ok {
		return "", false
	}
	if !s.IsDonor() {
		response.Forbidden(c, 10003, "仅献血者可访问")
		return "", false
	}
	return s.AccountID, true
}

// GetClaims 当前请求的 Token 声明，未认证时为 nil
func GetClaims(c *gin.Context) *jwt.Claims {
	v, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, _ := v.(*jwt.Claims)
	return claims
}
