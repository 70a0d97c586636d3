package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/pashumitra/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// AgentAuthState 代理人鉴权快照
// 仅用于服务端 Redis 缓存，避免每次请求回查数据库。
type AgentAuthState struct {
	AgentID      uint   `json:"agent_id"`
	AgentCode    string `json:"agent_code"`
	Status       string `json:"status"`
	TokenVersion uint64 `json:"token_version"`
	UpdatedAt    int64  `json:"updated_at"`
}

// AdminAuthState 管理员鉴权快照
type AdminAuthState struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	TokenVersion uint64 `json:"token_version"`
	UpdatedAt    int64  `json:"updated_at"`
}

func agentAuthStateKey(agentID uint) string {
	return fmt.Sprintf("auth:agent:%d", agentID)
}

func adminAuthStateKey(adminID uint) string {
	return fmt.Sprintf("auth:admin:%d", adminID)
}

// BuildAgentAuthState 从代理人模型构建鉴权快照
func BuildAgentAuthState(agent *models.Agent) *AgentAuthState {
	if agent == nil {
		return nil
	}
	return &AgentAuthState{
		AgentID:      agent.ID,
		AgentCode:    agent.AgentCode,
		Status:       agent.Status,
		TokenVersion: agent.TokenVersion,
		UpdatedAt:    time.Now().Unix(),
	}
}

// BuildAdminAuthState 从管理员模型构建鉴权快照
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	return &AdminAuthState{
		AdminID:      admin.ID,
		Username:     admin.Username,
		Role:         admin.Role,
		TokenVersion: admin.TokenVersion,
		UpdatedAt:    time.Now().Unix(),
	}
}

// GetAgentAuthState 获取代理人鉴权快照
func GetAgentAuthState(ctx context.Context, agentID uint) (*AgentAuthState, bool, error) {
	if agentID == 0 {
		return nil, false, nil
	}
	var state AgentAuthState
	hit, err := GetJSON(ctx, agentAuthStateKey(agentID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetAgentAuthState 写入代理人鉴权快照
func SetAgentAuthState(ctx context.Context, state *AgentAuthState) error {
	if state == nil || state.AgentID == 0 {
		return nil
	}
	return SetJSON(ctx, agentAuthStateKey(state.AgentID), state, authStateCacheTTL)
}

// DelAgentAuthState 删除代理人鉴权快照
func DelAgentAuthState(ctx context.Context, agentID uint) error {
	if agentID == 0 {
		return nil
	}
	return Del(ctx, agentAuthStateKey(agentID))
}

// GetAdminAuthState 获取管理员鉴权快照
func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	if adminID == 0 {
		return nil, false, nil
	}
	var state AdminAuthState
	hit, err := GetJSON(ctx, adminAuthStateKey(adminID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetAdminAuthState 写入管理员鉴权快照
func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil || state.AdminID == 0 {
		return nil
	}
	return SetJSON(ctx, adminAuthStateKey(state.AdminID), state, authStateCacheTTL)
}

// DelAdminAuthState 删除管理员鉴权快照
func DelAdminAuthState(ctx context.Context, adminID uint) error {
	if adminID == 0 {
		return nil
	}
	return Del(ctx, adminAuthStateKey(adminID))
}
