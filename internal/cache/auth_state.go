package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/buildlab-academy/internal/models"
)

const adminAuthStateTTL = 10 * time.Minute

// AdminAuthState 审核员鉴权快照，JWT 中间件据此校验 token_version
type AdminAuthState struct {
	AdminID      uint   `json:"admin_id"`
	Username     string `json:"username"`
	TokenVersion uint64 `json:"token_version"`
	IsSuper      bool   `json:"is_super"`
}

func adminAuthStateKey(adminID uint) string {
	return "admin:auth:" + strconv.FormatUint(uint64(adminID), 10)
}

// BuildAdminAuthState 从账号记录提取快照
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	return &AdminAuthState{
		AdminID:      admin.ID,
		Username:     admin.Username,
		TokenVersion: admin.TokenVersion,
		IsSuper:      admin.IsSuper,
	}
}

// GetAdminAuthState 读取快照；缓存未启用时 hit 恒为 false
func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	if adminID == 0 {
		return nil, false, nil
	}
	state := &AdminAuthState{}
	hit, err := GetJSON(ctx, adminAuthStateKey(adminID), state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return state, true, nil
}

// SetAdminAuthState 写入快照
func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil || state.AdminID == 0 {
		return nil
	}
	return SetJSON(ctx, adminAuthStateKey(state.AdminID), state, adminAuthStateTTL)
}
