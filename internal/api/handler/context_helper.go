package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SouhailBechchari/Emsoutenance-sub000/internal/model"
	"github.com/SouhailBechchari/Emsoutenance-sub000/pkg/response"
)

// JWT 中间件写入 gin.Context 的键
const (
	CtxUserID   = "user_id"
	CtxRole     = "role"
	CtxTokenJTI = "token_jti"
	CtxTokenExp = "token_exp"
)

// MustGetUserID 从上下文获取当前用户 ID
// 失败时已写入 401 并返回 false，调用方直接 return
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(CtxUserID)
	if !exists {
		response.Unauthorized(c, 10002, "unauthenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "unauthenticated")
		return "", false
	}
	return s, true
}

// MustGetRole 从上下文获取当前用户角色
func MustGetRole(c *gin.Context) (model.Role, bool) {
	v, exists := c.Get(CtxRole)
	if !exists {
		response.Unauthorized(c, 10002, "unauthenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || !model.Role(s).Valid() {
		response.Unauthorized(c, 10002, "unauthenticated")
		return "", false
	}
	return model.Role(s), true
}

// tokenIdentity 当前 Token 的 jti 与过期时间，缺失时为零值
func tokenIdentity(c *gin.Context) (string, time.Time) {
	jti := c.GetString(CtxTokenJTI)
	exp, _ := c.Get(CtxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}

// pathID 读取路由参数 ":id"，不是标准 uuid 时按 notFound 响应
func pathID(c *gin.Context, notFound error) (string, bool) {
	id := c.Param("id")
	if !isUUID(id) {
		handleError(c, nil, notFound)
		return "", false
	}
	return id, true
}

func isUUID(s string) bool {
	return len(s) == 36 && uuid.Validate(s) == nil
}
