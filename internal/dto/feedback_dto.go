package dto

import (
	"time"

	"pulseboard/internal/model"
)

type CreateFeedbackReq struct {
	Title        string `json:"title" binding:"required,max=255"`
	Description  string `json:"description" binding:"required"`
	FeedbackType string `json:"feedback_type"`
	Priority     uint   `json:"priority"`
	TagIDs       []uint `json:"tag_ids"`
}

type UpdateFeedbackReq struct {
	Title        *string `json:"title" binding:"omitempty,max=255"`
	Description  *string `json:"description"`
	Status       *string `json:"status"`
	FeedbackType *string `json:"feedback_type"`
	Priority     *uint   `json:"priority"`
	TagIDs       *[]uint `json:"tag_ids"`
}

type FeedbackResp struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	BoardID      uint      `json:"board_id"`
	CreatedByID  uint      `json:"created_by_id"`
	Status       string    `json:"status"`
	FeedbackType string    `json:"feedback_type"`
	Priority     uint      `json:"priority"`
	Tags         []TagResp `json:"tags"`
	UpvoteCount  int       `json:"upvote_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewFeedbackResp(f *model.Feedback) *FeedbackResp {
	tags := make([]TagResp, 0, len(f.Tags))
	for _, t := range f.Tags {
		tags = append(tags, TagResp{ID: t.ID, Name: t.Name, Color: t.Color})
	}
	return &FeedbackResp{
		ID:           f.ID,
		Title:        f.Title,
		Description:  f.Description,
		BoardID:      f.BoardID,
		CreatedByID:  f.CreatedByID,
		Status:       f.Status,
		FeedbackType: f.FeedbackType,
		Priority:     f.Priority,
		Tags:         tags,
		UpvoteCount:  len(f.Upvotes),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

type TagResp struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type CreateTagReq struct {
	Name  string `json:"name" binding:"required,max=50"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}

// FeedbackListQuery 列表过滤/搜索/排序参数
type FeedbackListQuery struct {
	Status       string
	FeedbackType string
	Search       string
	Ordering     string
}
