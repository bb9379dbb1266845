package service

import (
	"pulseboard/internal/model"

	"gorm.io/gorm"
)

// 权限判定谓词。创建者不落成员表，所以每个判定都要单独比对 CreatedByID，
// 不能只查 board_memberships

// isBoardAdmin 看板管理权：创建者本人，或持有 ADMIN 角色成员记录
func isBoardAdmin(db *gorm.DB, userID uint, board *model.Board) bool {
	if userID == 0 {
		return false
	}
	if userID == board.CreatedByID {
		return true
	}
	var count int64
	db.Model(&model.BoardMembership{}).
		Where("board_id = ? AND user_id = ? AND role = ?", board.ID, userID, model.RoleAdmin).
		Count(&count)
	return count > 0
}

// isBoardMember 看板成员：创建者本人，或持有任意角色成员记录
func isBoardMember(db *gorm.DB, userID uint, board *model.Board) bool {
	if userID == 0 {
		return false
	}
	if userID == board.CreatedByID {
		return true
	}
	return hasMembership(db, userID, board.ID)
}

// canViewBoard 可见性：公开看板对所有人可见，私有看板仅成员可见
// userID 为 0 表示匿名
func canViewBoard(db *gorm.DB, userID uint, board *model.Board) bool {
	if board.IsPublic {
		return true
	}
	return isBoardMember(db, userID, board)
}

func hasMembership(db *gorm.DB, userID, boardID uint) bool {
	var count int64
	db.Model(&model.BoardMembership{}).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Count(&count)
	return count > 0
}
