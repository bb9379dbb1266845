package model

// 全局角色与看板成员角色共用同一套枚举
const (
	RoleAdmin       = "ADMIN"
	RoleModerator   = "MODERATOR"
	RoleContributor = "CONTRIBUTOR"
)

// IsValidRole 校验角色枚举值
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleModerator, RoleContributor:
		return true
	}
	return false
}

type User struct {
	BaseModel
	Username     string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;size:254;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FirstName    string `gorm:"size:150" json:"first_name"`
	LastName     string `gorm:"size:150" json:"last_name"`

	// 系统级角色 - 与看板内角色相互独立
	Role string `gorm:"size:20;default:'CONTRIBUTOR'" json:"role"`

	Bio string `gorm:"type:text" json:"bio"`
	// 头像在对象存储中的 object name，可为空
	Avatar string `gorm:"size:255" json:"avatar"`

	// 我加入的看板 (通过中间表关联)
	Memberships []BoardMembership `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
}
