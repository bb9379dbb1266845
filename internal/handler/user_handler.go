package handler

import (
	"fmt"
	"io"
	"net/http"

	"pulseboard/internal/dto"
	"pulseboard/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Profile 当前用户资料
// GET /profile/
func (h *UserHandler) Profile(c *gin.Context) {
	userID := c.GetUint("userID")

	user, err := h.svc.Profile(userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile 更新资料 (PUT/PATCH 共用，未传的字段不动)
// PUT/PATCH /profile/
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("userID")
	user, err := h.svc.UpdateProfile(userID, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UploadAvatar 上传头像
// POST /profile/avatar/
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar file is required"})
		return
	}

	userID := c.GetUint("userID")
	user, err := h.svc.UploadAvatar(c.Request.Context(), userID, file)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetFile 读取头像文件
// GET /files/*name
func (h *UserHandler) GetFile(c *gin.Context) {
	// 通配路由带前导斜杠，去掉
	name := c.Param("name")
	if len(name) > 0 && name[0] == '/' {
		name = name[1:]
	}

	obj, size, contentType, err := h.svc.GetFile(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	defer obj.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", "inline")
	c.Header("Content-Length", fmt.Sprintf("%d", size))
	c.Header("Content-Type", contentType)

	io.Copy(c.Writer, obj)
}

// List 用户列表，?role= 过滤，?search= 搜索
// GET /users/
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Query("role"), c.Query("search"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}
