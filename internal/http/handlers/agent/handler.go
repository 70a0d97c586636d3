package agent

import "github.com/pashumitra/internal/provider"

// Handler 代理人端接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建代理人端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
