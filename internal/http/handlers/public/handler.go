package public

import "github.com/buildlab-academy/internal/provider"

// Handler 公开与用户侧接口处理器入口
// 说明：游客接口与携带用户令牌的学生折扣接口共用。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
