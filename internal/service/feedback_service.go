package service

import (
	"context"
	"errors"

	"pulseboard/internal/data"
	"pulseboard/internal/dto"
	"pulseboard/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FeedbackService struct {
	Data *data.Data
}

func NewFeedbackService(data *data.Data) *FeedbackService {
	return &FeedbackService{Data: data}
}

var feedbackOrderings = map[string]string{
	"priority":    "priority",
	"-priority":   "priority DESC",
	"created_at":  "created_at",
	"-created_at": "created_at DESC",
	"updated_at":  "updated_at",
	"-updated_at": "updated_at DESC",
}

// ListForBoard 看板下的反馈列表，可见性跟随看板
func (s *FeedbackService) ListForBoard(ctx context.Context, userID, boardID uint, q dto.FeedbackListQuery) ([]dto.FeedbackResp, error) {
	board, err := s.loadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if !canViewBoard(s.Data.DB, userID, board) {
		return nil, errNotFound("Board not found")
	}

	query := s.Data.DB.WithContext(ctx).Model(&model.Feedback{}).
		Preload("Tags").
		Preload("Upvotes").
		Where("board_id = ?", board.ID)

	if q.Status != "" {
		if !model.IsValidStatus(q.Status) {
			return nil, errValidation("Invalid status filter")
		}
		query = query.Where("status = ?", q.Status)
	}
	if q.FeedbackType != "" {
		if !model.IsValidFeedbackType(q.FeedbackType) {
			return nil, errValidation("Invalid feedback_type filter")
		}
		query = query.Where("feedback_type = ?", q.FeedbackType)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if q.Ordering != "" {
		order, ok := feedbackOrderings[q.Ordering]
		if !ok {
			return nil, errValidation("Invalid ordering field")
		}
		query = query.Order(order)
	} else {
		query = query.Order("created_at DESC")
	}

	var items []model.Feedback
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}

	result := make([]dto.FeedbackResp, 0, len(items))
	for i := range items {
		result = append(result, *dto.NewFeedbackResp(&items[i]))
	}
	return result, nil
}

// Create 在看板内提交反馈，要求看板成员（或创建者）
func (s *FeedbackService) Create(ctx context.Context, userID, boardID uint, req dto.CreateFeedbackReq) (*dto.FeedbackResp, error) {
	board, err := s.loadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if !canViewBoard(s.Data.DB, userID, board) {
		return nil, errNotFound("Board not found")
	}
	if !isBoardMember(s.Data.DB, userID, board) {
		return nil, errForbidden("You must be a member of this board to submit feedback")
	}

	feedbackType := req.FeedbackType
	if feedbackType == "" {
		feedbackType = model.TypeFeatureRequest
	}
	if !model.IsValidFeedbackType(feedbackType) {
		return nil, errValidation("Invalid feedback type")
	}

	tags, err := s.resolveTags(ctx, req.TagIDs)
	if err != nil {
		return nil, err
	}

	item := &model.Feedback{
		Title:        req.Title,
		Description:  req.Description,
		BoardID:      board.ID,
		CreatedByID:  userID,
		Status:       model.StatusOpen,
		FeedbackType: feedbackType,
		Priority:     req.Priority,
		Tags:         tags,
	}
	if err := s.Data.DB.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return dto.NewFeedbackResp(item), nil
}

// Get 反馈详情，可见性跟随所属看板
func (s *FeedbackService) Get(ctx context.Context, userID, feedbackID uint) (*dto.FeedbackResp, error) {
	item, board, err := s.loadFeedback(ctx, feedbackID)
	if err != nil {
		return nil, err
	}
	if !canViewBoard(s.Data.DB, userID, board) {
		return nil, errNotFound("Feedback not found")
	}
	return dto.NewFeedbackResp(item), nil
}

// Update 修改反馈：提交人本人或看板管理员
func (s *FeedbackService) Update(ctx context.Context, userID, feedbackID uint, req dto.UpdateFeedbackReq) (*dto.FeedbackResp, error) {
	item, board, err := s.loadFeedback(ctx, feedbackID)
	if err != nil {
		return nil, err
	}
	if !canViewBoard(s.Data.DB, userID, board) {
		return nil, errNotFound("Feedback not found")
	}
	if userID != item.CreatedByID && !isBoardAdmin(s.Data.DB, userID, board) {
		return nil, errForbidden("You do not have permission to perform this action")
	}

	if req.Status != nil {
		if !model.IsValidStatus(*req.Status) {
			return nil, errValidation("Invalid status")
		}
		item.Status = *req.Status
	}
	if req.FeedbackType != nil {
		if !model.IsValidFeedbackType(*req.FeedbackType) {
			return nil, errValidation("Invalid feedback type")
		}
		item.FeedbackType = *req.FeedbackType
	}
	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Priority != nil {
		item.Priority = *req.Priority
	}

	// Omit 关联，标签变更走下面的 Replace，不跟随 Save 隐式触发
	if err := s.Data.DB.WithContext(ctx).Omit(clause.Associations).Save(item).Error; err != nil {
		return nil, err
	}

	if req.TagIDs != nil {
		tags, err := s.resolveTags(ctx, *req.TagIDs)
		if err != nil {
			return nil, err
		}
		if err := s.Data.DB.WithContext(ctx).Model(item).Association("Tags").Replace(tags); err != nil {
			return nil, err
		}
		item.Tags = tags
	}

	return dto.NewFeedbackResp(item), nil
}

// Delete 删除反馈，连带清理点赞与标签关联
func (s *FeedbackService) Delete(ctx context.Context, userID, feedbackID uint) error {
	item, board, err := s.loadFeedback(ctx, feedbackID)
	if err != nil {
		return err
	}
	if !canViewBoard(s.Data.DB, userID, board) {
		return errNotFound("Feedback not found")
	}
	if userID != item.CreatedByID && !isBoardAdmin(s.Data.DB, userID, board) {
		return errForbidden("You do not have permission to perform this action")
	}

	return s.Data.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("feedback_id = ?", item.ID).Delete(&model.Upvote{}).Error; err != nil {
			return err
		}
		if err := tx.Model(item).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Unscoped().Delete(item).Error
	})
}

// Upvote 点赞，一人一票。重复点赞报冲突，并发插入由复合主键兜底
func (s *FeedbackService) Upvote(ctx context.Context, userID, feedbackID uint) error {
	item, board, err := s.loadFeedback(ctx, feedbackID)
	if err != nil {
		return err
	}
	if !canViewBoard(s.Data.DB, userID, board) {
		return errNotFound("Feedback not found")
	}

	var count int64
	s.Data.DB.Model(&model.Upvote{}).
		Where("feedback_id = ? AND user_id = ?", item.ID, userID).
		Count(&count)
	if count > 0 {
		return errConflict("Already upvoted")
	}

	upvote := &model.Upvote{FeedbackID: item.ID, UserID: userID}
	if err := s.Data.DB.WithContext(ctx).Create(upvote).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errConflict("Already upvoted")
		}
		return err
	}
	return nil
}

// RemoveUpvote 取消点赞，只删自己那一票
func (s *FeedbackService) RemoveUpvote(ctx context.Context, userID, feedbackID uint) error {
	item, _, err := s.loadFeedback(ctx, feedbackID)
	if err != nil {
		return err
	}

	result := s.Data.DB.WithContext(ctx).
		Where("feedback_id = ? AND user_id = ?", item.ID, userID).
		Delete(&model.Upvote{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errConflict("You have not upvoted this feedback")
	}
	return nil
}

// ListTags 标签列表
func (s *FeedbackService) ListTags(ctx context.Context) ([]dto.TagResp, error) {
	var tags []model.Tag
	if err := s.Data.DB.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	result := make([]dto.TagResp, 0, len(tags))
	for _, t := range tags {
		result = append(result, dto.TagResp{ID: t.ID, Name: t.Name, Color: t.Color})
	}
	return result, nil
}

// CreateTag 创建标签，名称全局唯一
func (s *FeedbackService) CreateTag(ctx context.Context, req dto.CreateTagReq) (*dto.TagResp, error) {
	var count int64
	s.Data.DB.Model(&model.Tag{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		return nil, errConflict("Tag with this name already exists")
	}

	tag := &model.Tag{Name: req.Name, Color: req.Color}
	if tag.Color == "" {
		tag.Color = "#6c757d"
	}
	if err := s.Data.DB.WithContext(ctx).Create(tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errConflict("Tag with this name already exists")
		}
		return nil, err
	}
	return &dto.TagResp{ID: tag.ID, Name: tag.Name, Color: tag.Color}, nil
}

func (s *FeedbackService) resolveTags(ctx context.Context, tagIDs []uint) ([]model.Tag, error) {
	if len(tagIDs) == 0 {
		return nil, nil
	}
	var tags []model.Tag
	if err := s.Data.DB.WithContext(ctx).Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(tagIDs) {
		return nil, errNotFound("Tag not found")
	}
	return tags, nil
}

func (s *FeedbackService) loadBoard(ctx context.Context, boardID uint) (*model.Board, error) {
	var board model.Board
	if err := s.Data.DB.WithContext(ctx).First(&board, boardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Board not found")
		}
		return nil, err
	}
	return &board, nil
}

func (s *FeedbackService) loadFeedback(ctx context.Context, feedbackID uint) (*model.Feedback, *model.Board, error) {
	var item model.Feedback
	if err := s.Data.DB.WithContext(ctx).
		Preload("Tags").
		Preload("Upvotes").
		First(&item, feedbackID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errNotFound("Feedback not found")
		}
		return nil, nil, err
	}

	var board model.Board
	if err := s.Data.DB.WithContext(ctx).First(&board, item.BoardID).Error; err != nil {
		return nil, nil, err
	}
	return &item, &board, nil
}
