package handler

import (
	"net/http"
	"strconv"

	"pulseboard/internal/dto"
	"pulseboard/internal/service"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	svc *service.FeedbackService
}

func NewFeedbackHandler(svc *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

func feedbackID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feedback not found"})
		return 0, false
	}
	return uint(id), true
}

// ListForBoard 看板下的反馈列表
// GET /boards/:id/feedback/
func (h *FeedbackHandler) ListForBoard(c *gin.Context) {
	id, ok := boardID(c)
	if !ok {
		return
	}

	q := dto.FeedbackListQuery{
		Status:       c.Query("status"),
		FeedbackType: c.Query("feedback_type"),
		Search:       c.Query("search"),
		Ordering:     c.Query("ordering"),
	}

	items, err := h.svc.ListForBoard(c.Request.Context(), c.GetUint("userID"), id, q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Create 提交反馈 (看板成员)
// POST /boards/:id/feedback/
func (h *FeedbackHandler) Create(c *gin.Context) {
	id, ok := boardID(c)
	if !ok {
		return
	}

	var req dto.CreateFeedbackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.svc.Create(c.Request.Context(), c.GetUint("userID"), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Get 反馈详情
// GET /feedback/:id/
func (h *FeedbackHandler) Get(c *gin.Context) {
	id, ok := feedbackID(c)
	if !ok {
		return
	}

	item, err := h.svc.Get(c.Request.Context(), c.GetUint("userID"), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Update 修改反馈 (提交人或看板管理员)
// PUT/PATCH /feedback/:id/
func (h *FeedbackHandler) Update(c *gin.Context) {
	id, ok := feedbackID(c)
	if !ok {
		return
	}

	var req dto.UpdateFeedbackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.svc.Update(c.Request.Context(), c.GetUint("userID"), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Delete 删除反馈
// DELETE /feedback/:id/
func (h *FeedbackHandler) Delete(c *gin.Context) {
	id, ok := feedbackID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.GetUint("userID"), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Upvote 点赞
// POST /feedback/:id/upvote/
func (h *FeedbackHandler) Upvote(c *gin.Context) {
	id, ok := feedbackID(c)
	if !ok {
		return
	}

	if err := h.svc.Upvote(c.Request.Context(), c.GetUint("userID"), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Upvoted"})
}

// RemoveUpvote 取消点赞
// DELETE /feedback/:id/upvote/
func (h *FeedbackHandler) RemoveUpvote(c *gin.Context) {
	id, ok := feedbackID(c)
	if !ok {
		return
	}

	if err := h.svc.RemoveUpvote(c.Request.Context(), c.GetUint("userID"), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListTags 标签列表
// GET /tags/
func (h *FeedbackHandler) ListTags(c *gin.Context) {
	tags, err := h.svc.ListTags(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// CreateTag 创建标签
// POST /tags/
func (h *FeedbackHandler) CreateTag(c *gin.Context) {
	var req dto.CreateTagReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag, err := h.svc.CreateTag(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}
