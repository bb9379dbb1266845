package dto

import (
	"time"

	"pulseboard/internal/model"
)

type CreateBoardReq struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

type UpdateBoardReq struct {
	Name        *string `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

// BoardResp 列表视图：概要信息
type BoardResp struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	CreatedByID uint      `json:"created_by_id"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewBoardResp(b *model.Board) *BoardResp {
	return &BoardResp{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		IsPublic:    b.IsPublic,
		CreatedByID: b.CreatedByID,
		MemberCount: len(b.Memberships),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// BoardDetailResp 详情视图：附带成员名单
type BoardDetailResp struct {
	BoardResp
	Members       []MembershipResp `json:"members"`
	FeedbackCount int64            `json:"feedback_count"`
}

type MembershipResp struct {
	BoardID  uint      `json:"board_id"`
	UserID   uint      `json:"user_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

func NewMembershipResp(m *model.BoardMembership) *MembershipResp {
	return &MembershipResp{
		BoardID:  m.BoardID,
		UserID:   m.UserID,
		Username: m.User.Username,
		Role:     m.Role,
		JoinedAt: m.JoinedAt,
	}
}

type AddMemberReq struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role"`
}

type RemoveMemberReq struct {
	UserID uint `json:"user_id" binding:"required"`
}

type UpdateMemberRoleReq struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

// BoardListQuery 列表过滤/搜索/排序参数
type BoardListQuery struct {
	IsPublic *bool
	Search   string
	Ordering string
}
