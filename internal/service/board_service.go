package service

import (
	"context"
	"errors"
	"fmt"

	"pulseboard/internal/data"
	"pulseboard/internal/dto"
	"pulseboard/internal/model"

	"gorm.io/gorm"
)

type BoardService struct {
	Data *data.Data
}

func NewBoardService(data *data.Data) *BoardService {
	return &BoardService{Data: data}
}

// 列表排序白名单，防止把任意列名拼进 ORDER BY
var boardOrderings = map[string]string{
	"name":        "name",
	"-name":       "name DESC",
	"created_at":  "created_at",
	"-created_at": "created_at DESC",
	"updated_at":  "updated_at",
	"-updated_at": "updated_at DESC",
}

// List 看板列表
// 可见性规则：匿名只看公开；登录用户看「成员 ∪ 公开」去重。
// 注意创建者身份不放宽列表可见性：没有成员记录的创建者在列表里
// 看不到自己的私有看板（这是既定行为，不是 bug）
func (s *BoardService) List(ctx context.Context, userID uint, q dto.BoardListQuery) ([]dto.BoardResp, error) {
	query := s.Data.DB.WithContext(ctx).Model(&model.Board{}).Preload("Memberships")

	if userID == 0 {
		query = query.Where("is_public = ?", true)
	} else {
		query = query.Where(
			"is_public = ? OR id IN (?)",
			true,
			s.Data.DB.Model(&model.BoardMembership{}).Select("board_id").Where("user_id = ?", userID),
		)
	}

	if q.IsPublic != nil {
		query = query.Where("is_public = ?", *q.IsPublic)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if q.Ordering != "" {
		order, ok := boardOrderings[q.Ordering]
		if !ok {
			return nil, errValidation("Invalid ordering field")
		}
		query = query.Order(order)
	} else {
		query = query.Order("created_at DESC")
	}

	var boards []model.Board
	if err := query.Find(&boards).Error; err != nil {
		return nil, err
	}

	result := make([]dto.BoardResp, 0, len(boards))
	for i := range boards {
		result = append(result, *dto.NewBoardResp(&boards[i]))
	}
	return result, nil
}

// Get 看板详情，附带成员名单
func (s *BoardService) Get(ctx context.Context, userID, boardID uint) (*dto.BoardDetailResp, error) {
	board, err := s.loadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if !canViewBoard(s.Data.DB, userID, board) {
		return nil, errNotFound("Board not found")
	}

	var memberships []model.BoardMembership
	if err := s.Data.DB.WithContext(ctx).
		Preload("User").
		Where("board_id = ?", boardID).
		Find(&memberships).Error; err != nil {
		return nil, err
	}

	var feedbackCount int64
	s.Data.DB.Model(&model.Feedback{}).Where("board_id = ?", boardID).Count(&feedbackCount)

	resp := &dto.BoardDetailResp{
		BoardResp:     *dto.NewBoardResp(board),
		Members:       make([]dto.MembershipResp, 0, len(memberships)),
		FeedbackCount: feedbackCount,
	}
	resp.MemberCount = len(memberships)
	for i := range memberships {
		resp.Members = append(resp.Members, *dto.NewMembershipResp(&memberships[i]))
	}
	return resp, nil
}

// Create 创建看板。创建者即隐式管理员，不写成员记录，
// 后续管理权限判定直接比对 CreatedByID
func (s *BoardService) Create(ctx context.Context, userID uint, req dto.CreateBoardReq) (*dto.BoardResp, error) {
	board := &model.Board{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		CreatedByID: userID,
	}
	if err := s.Data.DB.WithContext(ctx).Create(board).Error; err != nil {
		return nil, err
	}
	return dto.NewBoardResp(board), nil
}

// Update 修改看板，仅看板管理员
func (s *BoardService) Update(ctx context.Context, userID, boardID uint, req dto.UpdateBoardReq) (*dto.BoardResp, error) {
	board, err := s.requireAdmin(ctx, userID, boardID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		board.Name = *req.Name
	}
	if req.Description != nil {
		board.Description = *req.Description
	}
	if req.IsPublic != nil {
		board.IsPublic = *req.IsPublic
	}
	if err := s.Data.DB.WithContext(ctx).Save(board).Error; err != nil {
		return nil, err
	}
	return dto.NewBoardResp(board), nil
}

// Delete 删除看板，级联清理成员、反馈、点赞与标签关联
func (s *BoardService) Delete(ctx context.Context, userID, boardID uint) error {
	board, err := s.requireAdmin(ctx, userID, boardID)
	if err != nil {
		return err
	}

	return s.Data.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		feedbackIDs := tx.Model(&model.Feedback{}).Select("id").Where("board_id = ?", board.ID)
		if err := tx.Where("feedback_id IN (?)", feedbackIDs).Delete(&model.Upvote{}).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"DELETE FROM feedback_tags WHERE feedback_id IN (SELECT id FROM feedbacks WHERE board_id = ?)",
			board.ID,
		).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("board_id = ?", board.ID).Delete(&model.Feedback{}).Error; err != nil {
			return err
		}
		if err := tx.Where("board_id = ?", board.ID).Delete(&model.BoardMembership{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(board).Error
	})
}

// AddMember 管理员添加成员
func (s *BoardService) AddMember(ctx context.Context, callerID, boardID uint, req dto.AddMemberReq) (*dto.MembershipResp, error) {
	board, err := s.requireAdmin(ctx, callerID, boardID)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleContributor
	}
	if !model.IsValidRole(role) {
		return nil, errValidation(invalidRoleMessage())
	}

	var user model.User
	if err := s.Data.DB.WithContext(ctx).First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("User not found")
		}
		return nil, err
	}

	if hasMembership(s.Data.DB, user.ID, board.ID) {
		return nil, errConflict("User is already a member of this board")
	}

	membership := &model.BoardMembership{
		BoardID: board.ID,
		UserID:  user.ID,
		Role:    role,
	}
	if err := s.Data.DB.WithContext(ctx).Create(membership).Error; err != nil {
		// 并发添加时由复合主键兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errConflict("User is already a member of this board")
		}
		return nil, err
	}

	membership.User = user
	return dto.NewMembershipResp(membership), nil
}

// RemoveMember 管理员移除成员。创建者永远不可被移除
func (s *BoardService) RemoveMember(ctx context.Context, callerID, boardID, userID uint) error {
	board, err := s.requireAdmin(ctx, callerID, boardID)
	if err != nil {
		return err
	}

	var user model.User
	if err := s.Data.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNotFound("User not found")
		}
		return err
	}

	// 创建者不落成员表，必须先判创建者身份再查成员记录，
	// 否则移除创建者会误报"不是成员"
	if user.ID == board.CreatedByID {
		return errConflict("Cannot remove the board creator")
	}

	var membership model.BoardMembership
	if err := s.Data.DB.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", board.ID, user.ID).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errConflict("User is not a member of this board")
		}
		return err
	}

	return s.Data.DB.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", board.ID, user.ID).
		Delete(&model.BoardMembership{}).Error
}

// Join 加入公开看板，角色固定为 CONTRIBUTOR
// 先查重复成员再查公开性：已是成员时报"已是成员"而不是"私有看板"
func (s *BoardService) Join(ctx context.Context, userID, boardID uint) (*dto.MembershipResp, error) {
	board, err := s.loadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	if hasMembership(s.Data.DB, userID, board.ID) {
		return nil, errConflict("User is already a member of this board")
	}
	if !board.IsPublic {
		return nil, errConflict("Cannot join a private board")
	}

	membership := &model.BoardMembership{
		BoardID: board.ID,
		UserID:  userID,
		Role:    model.RoleContributor,
	}
	if err := s.Data.DB.WithContext(ctx).Create(membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errConflict("User is already a member of this board")
		}
		return nil, err
	}

	if err := s.Data.DB.WithContext(ctx).First(&membership.User, userID).Error; err != nil {
		return nil, err
	}
	return dto.NewMembershipResp(membership), nil
}

// Leave 退出看板。创建者必须先转让或删除看板，不能直接退出
func (s *BoardService) Leave(ctx context.Context, userID, boardID uint) error {
	board, err := s.loadBoard(ctx, boardID)
	if err != nil {
		return err
	}

	// 同 RemoveMember：创建者身份先于成员记录检查
	if userID == board.CreatedByID {
		return errConflict("Board creator cannot leave. Transfer ownership first or delete the board.")
	}

	var membership model.BoardMembership
	if err := s.Data.DB.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", board.ID, userID).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errConflict("User is not a member of this board")
		}
		return err
	}

	return s.Data.DB.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", board.ID, userID).
		Delete(&model.BoardMembership{}).Error
}

// UpdateMemberRole 管理员调整成员角色
// 角色非法时立即失败，不触碰现有成员记录
func (s *BoardService) UpdateMemberRole(ctx context.Context, callerID, boardID uint, req dto.UpdateMemberRoleReq) (*dto.MembershipResp, error) {
	board, err := s.requireAdmin(ctx, callerID, boardID)
	if err != nil {
		return nil, err
	}

	if !model.IsValidRole(req.Role) {
		return nil, errValidation(invalidRoleMessage())
	}

	var user model.User
	if err := s.Data.DB.WithContext(ctx).First(&user, req.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("User not found")
		}
		return nil, err
	}

	var membership model.BoardMembership
	if err := s.Data.DB.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", board.ID, user.ID).
		First(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errConflict("User is not a member of this board")
		}
		return nil, err
	}

	membership.Role = req.Role
	if err := s.Data.DB.WithContext(ctx).
		Model(&model.BoardMembership{}).
		Where("board_id = ? AND user_id = ?", board.ID, user.ID).
		Update("role", req.Role).Error; err != nil {
		return nil, err
	}

	membership.User = user
	return dto.NewMembershipResp(&membership), nil
}

func (s *BoardService) loadBoard(ctx context.Context, boardID uint) (*model.Board, error) {
	var board model.Board
	if err := s.Data.DB.WithContext(ctx).First(&board, boardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound("Board not found")
		}
		return nil, err
	}
	return &board, nil
}

// requireAdmin 管理类操作的统一前置检查：
// 不可见 → 404（不暴露私有看板的存在），可见但非管理员 → 403
func (s *BoardService) requireAdmin(ctx context.Context, userID, boardID uint) (*model.Board, error) {
	board, err := s.loadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if !canViewBoard(s.Data.DB, userID, board) {
		return nil, errNotFound("Board not found")
	}
	if !isBoardAdmin(s.Data.DB, userID, board) {
		return nil, errForbidden("You do not have permission to perform this action")
	}
	return board, nil
}

func invalidRoleMessage() string {
	return fmt.Sprintf("Invalid role. Choose from [%s %s %s]",
		model.RoleAdmin, model.RoleModerator, model.RoleContributor)
}
