package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"pulseboard/internal/data"
	"pulseboard/internal/dto"
	"pulseboard/internal/repository"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

type UserService struct {
	Data *data.Data
	repo repository.UserRepository
}

func NewUserService(d *data.Data, repo repository.UserRepository) *UserService {
	return &UserService{Data: d, repo: repo}
}

// Profile 获取当前登录用户的资料
func (s *UserService) Profile(userID uint) (*dto.UserResp, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, errNotFound("User not found")
	}
	return dto.NewUserResp(user), nil
}

// UpdateProfile 局部更新资料，只动传了的字段
func (s *UserService) UpdateProfile(userID uint, req dto.UpdateProfileReq) (*dto.UserResp, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, errNotFound("User not found")
	}

	if req.Email != nil && *req.Email != user.Email {
		if s.repo.IsEmailExist(*req.Email) {
			return nil, errValidation("A user with that email already exists")
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}

	if err := s.repo.Save(user); err != nil {
		return nil, err
	}
	return dto.NewUserResp(user), nil
}

// 头像允许的扩展名
var allowedAvatarExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadAvatar 上传头像到 MinIO 并把 object name 记到用户资料
func (s *UserService) UploadAvatar(ctx context.Context, userID uint, fileHeader *multipart.FileHeader) (*dto.UserResp, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, errNotFound("User not found")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedAvatarExt[ext] {
		return nil, errValidation("Unsupported image format")
	}

	// 1. 打开文件流
	src, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// 2. 生成存储路径: avatars/{user_id}/{uuid}{ext}
	objectName := fmt.Sprintf("avatars/%d/%s%s", user.ID, uuid.New().String(), ext)

	// 3. 上传到 MinIO
	_, err = s.Data.Minio.PutObject(ctx, s.Data.Bucket, objectName, src, fileHeader.Size, minio.PutObjectOptions{
		ContentType: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		return nil, fmt.Errorf("avatar upload failed: %v", err)
	}

	// 4. 落库
	user.Avatar = objectName
	if err := s.repo.Save(user); err != nil {
		return nil, err
	}
	return dto.NewUserResp(user), nil
}

// GetFile 按 object name 读取存储对象，handler 层负责流式返回
func (s *UserService) GetFile(ctx context.Context, objectName string) (io.ReadCloser, int64, string, error) {
	obj, err := s.Data.Minio.GetObject(ctx, s.Data.Bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, "", err
	}
	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, 0, "", err
	}
	return obj, stat.Size, stat.ContentType, nil
}

// ListUsers 用户列表，按角色过滤 + 搜索
func (s *UserService) ListUsers(role, search string) ([]dto.UserResp, error) {
	if role != "" {
		role = strings.ToUpper(role)
	}
	users, err := s.repo.List(role, search)
	if err != nil {
		return nil, err
	}

	result := make([]dto.UserResp, 0, len(users))
	for i := range users {
		result = append(result, *dto.NewUserResp(&users[i]))
	}
	return result, nil
}
