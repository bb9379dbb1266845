package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"pulseboard/internal/data"
	"pulseboard/internal/dto"
	"pulseboard/internal/model"
	"pulseboard/internal/utils"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestData 内存 sqlite，结构与生产 AutoMigrate 保持一致
func newTestData(t *testing.T) *data.Data {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// 内存库只允许一个连接，避免连接池拿到空库
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Board{},
		&model.BoardMembership{},
		&model.Tag{},
		&model.Feedback{},
		&model.Upvote{},
	))

	return &data.Data{DB: db}
}

func createTestUser(t *testing.T, d *data.Data, username string) *model.User {
	t.Helper()
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)
	user := &model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         model.RoleContributor,
	}
	require.NoError(t, d.DB.Create(user).Error)
	return user
}

func createTestBoard(t *testing.T, d *data.Data, creator *model.User, isPublic bool) *model.Board {
	t.Helper()
	board := &model.Board{
		Name:        "board-" + creator.Username,
		Description: "test board",
		IsPublic:    isPublic,
		CreatedByID: creator.ID,
	}
	require.NoError(t, d.DB.Create(board).Error)
	return board
}

func addTestMember(t *testing.T, d *data.Data, board *model.Board, user *model.User, role string) {
	t.Helper()
	require.NoError(t, d.DB.Create(&model.BoardMembership{
		BoardID: board.ID,
		UserID:  user.ID,
		Role:    role,
	}).Error)
}

func createTestFeedback(t *testing.T, d *data.Data, board *model.Board, creator *model.User) *model.Feedback {
	t.Helper()
	item := &model.Feedback{
		Title:        "test feedback",
		Description:  "something is broken",
		BoardID:      board.ID,
		CreatedByID:  creator.ID,
		Status:       model.StatusOpen,
		FeedbackType: model.TypeBugReport,
	}
	require.NoError(t, d.DB.Create(item).Error)
	return item
}

// requireKind 断言业务错误分类
func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	e := AsError(err)
	require.NotNil(t, e, "expected a service error, got %v", err)
	require.Equal(t, kind, e.Kind, "message: %s", e.Message)
}

// fakeTokenStore 内存版刷新令牌存储，行为与 Redis 实现一致
type fakeTokenStore struct {
	mu   sync.Mutex
	jtis map[uint]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{jtis: make(map[uint]string)}
}

func (f *fakeTokenStore) Set(_ context.Context, userID uint, jti string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jtis[userID] = jti
	return nil
}

func (f *fakeTokenStore) Get(_ context.Context, userID uint) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jtis[userID], nil
}

func (f *fakeTokenStore) Delete(_ context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.jtis, userID)
	return nil
}

func boardIDs(boards []dto.BoardResp) []uint {
	ids := make([]uint, 0, len(boards))
	for _, b := range boards {
		ids = append(ids, b.ID)
	}
	return ids
}
