package handler

import (
	"net/http"
	"strconv"

	"pulseboard/internal/dto"
	"pulseboard/internal/service"

	"github.com/gin-gonic/gin"
)

type BoardHandler struct {
	svc *service.BoardService
}

func NewBoardHandler(svc *service.BoardService) *BoardHandler {
	return &BoardHandler{svc: svc}
}

// boardID 解析路径参数 :id
func boardID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Board not found"})
		return 0, false
	}
	return uint(id), true
}

// List 看板列表 (匿名可访问，只看到公开看板)
// GET /boards/
func (h *BoardHandler) List(c *gin.Context) {
	var q dto.BoardListQuery
	if v, ok := c.GetQuery("is_public"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid is_public filter"})
			return
		}
		q.IsPublic = &b
	}
	q.Search = c.Query("search")
	q.Ordering = c.Query("ordering")

	boards, err := h.svc.List(c.Request.Context(), c.GetUint("userID"), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, boards)
}

// Create 创建看板
// POST /boards/
func (h *BoardHandler) Create(c *gin.Context) {
	var req dto.CreateBoardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	board, err := h.svc.Create(c.Request.Context(), c.GetUint("userID"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, board)
}

// Get 看板详情
// GET /boards/:id/
func (h *BoardHandler) Get(c *gin.Context) {
	id, ok := boardID(c)
	if !ok {
		return
	}

	board, err := h.svc.Get(c.Request.Context(), c.GetUint("userID"), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// Update 修改看板 (PUT/PATCH 共用)
// PUT/PATCH /boards/:id/
func (h *BoardHandler) Update(c *gin.Context) {
	id, ok := boardID(c)
	if !ok {
		return
	}

	var req dto.UpdateBoardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	board, err := h.svc.Update(c.Request.Context(), c.GetUint("userID"), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// Delete 删除看板
// DELETE /boards/:id/
func (h *BoardHandler) Delete(c *gin.Context) {
	id, ok := boardID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.GetUint("userID"), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddMember 添加成员 (仅看板管理员)
// POST /boards/:id/add_member/
func (h *BoardHandler) AddMember(c *gin.Context) {
	id, ok := boardID(c)
	if !ok {
		return
	}

	var req dto.AddMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := h.svc.AddMember(c.Request.Context(), c.GetUint("userID"), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, membership)
}

// RemoveMember 移除成员 (仅看板管理员，创建者不可移除)
// POST /boards/:id/remove_member/
func (h *BoardHandler) RemoveMember(c *gin.Context) {
	id, ok := boardID(c)
	if !ok {
		return
	}

	var req dto.RemoveMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.RemoveMember(c.Request.Context(), c.GetUint("userID"), id, req.UserID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Join 加入公开看板
// POST /boards/:id/join/
func (h *BoardHandler) Join(c *gin.Context) {
	id, ok := boardID(c)
	if !ok {
		return
	}

	membership, err := h.svc.Join(c.Request.Context(), c.GetUint("userID"), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, membership)
}

// Leave 退出看板
// POST /boards/:id/leave/
func (h *BoardHandler) Leave(c *gin.Context) {
	id, ok := boardID(c)
	if !ok {
		return
	}

	if err := h.svc.Leave(c.Request.Context(), c.GetUint("userID"), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateMemberRole 调整成员角色 (仅看板管理员)
// POST /boards/:id/update_member_role/
func (h *BoardHandler) UpdateMemberRole(c *gin.Context) {
	id, ok := boardID(c)
	if !ok {
		return
	}

	var req dto.UpdateMemberRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := h.svc.UpdateMemberRole(c.Request.Context(), c.GetUint("userID"), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, membership)
}
