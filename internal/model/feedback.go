package model

import "time"

// 反馈状态枚举
const (
	StatusOpen        = "OPEN"
	StatusInProgress  = "IN_PROGRESS"
	StatusUnderReview = "UNDER_REVIEW"
	StatusPlanned     = "PLANNED"
	StatusCompleted   = "COMPLETED"
	StatusClosed      = "CLOSED"
)

// 反馈类型枚举
const (
	TypeFeatureRequest = "FEATURE_REQUEST"
	TypeBugReport      = "BUG_REPORT"
	TypeImprovement    = "IMPROVEMENT"
	TypeQuestion       = "QUESTION"
	TypeOther          = "OTHER"
)

func IsValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusUnderReview, StatusPlanned, StatusCompleted, StatusClosed:
		return true
	}
	return false
}

func IsValidFeedbackType(t string) bool {
	switch t {
	case TypeFeatureRequest, TypeBugReport, TypeImprovement, TypeQuestion, TypeOther:
		return true
	}
	return false
}

type Feedback struct {
	BaseModel
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`

	BoardID uint  `gorm:"index;not null" json:"board_id"`
	Board   Board `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	CreatedByID uint `gorm:"index;not null" json:"created_by_id"`
	CreatedBy   User `gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE" json:"created_by,omitempty"`

	Status       string `gorm:"size:20;default:'OPEN'" json:"status"`
	FeedbackType string `gorm:"size:20;default:'FEATURE_REQUEST'" json:"feedback_type"`
	Priority     uint   `gorm:"default:0" json:"priority"`

	Tags    []Tag    `gorm:"many2many:feedback_tags" json:"tags,omitempty"`
	Upvotes []Upvote `gorm:"foreignKey:FeedbackID;constraint:OnDelete:CASCADE" json:"upvotes,omitempty"`
}

type Tag struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Color string `gorm:"size:7;default:'#6c757d'" json:"color"`
}

// Upvote 点赞记录，(feedback_id, user_id) 复合主键保证一人一票
type Upvote struct {
	FeedbackID uint      `gorm:"primaryKey" json:"feedback_id"`
	UserID     uint      `gorm:"primaryKey" json:"user_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	Feedback Feedback `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	User     User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
