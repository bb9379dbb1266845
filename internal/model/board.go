package model

import "time"

type Board struct {
	BaseModel
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IsPublic    bool   `gorm:"default:false;index" json:"is_public"`

	// 创建者，创建后不可变更。注意：创建者不会写入成员表，
	// 权限判断时始终要单独比对 CreatedByID
	CreatedByID uint `gorm:"index;not null" json:"created_by_id"`
	CreatedBy   User `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`

	// 关联
	Memberships   []BoardMembership `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"memberships,omitempty"`
	FeedbackItems []Feedback        `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"feedback_items,omitempty"`
}

// BoardMembership 中间表：记录用户在看板里的角色
// (board_id, user_id) 复合主键保证同一用户在同一看板至多一条记录，
// 并发写入时由数据库唯一约束兜底
type BoardMembership struct {
	BoardID uint `gorm:"primaryKey" json:"board_id"`
	UserID  uint `gorm:"primaryKey" json:"user_id"`

	Role     string    `gorm:"size:20;default:'CONTRIBUTOR'" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	// 预加载关联
	User  User  `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Board Board `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
