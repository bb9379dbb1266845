package service

import (
	"context"
	"testing"

	"pulseboard/internal/dto"
	"pulseboard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListVisibility(t *testing.T) {
	d := newTestData(t)
	svc := NewBoardService(d)
	ctx := context.Background()

	creator := createTestUser(t, d, "creator")
	member := createTestUser(t, d, "member")
	outsider := createTestUser(t, d, "outsider")

	public := createTestBoard(t, d, creator, true)
	private := createTestBoard(t, d, creator, false)
	addTestMember(t, d, private, member, model.RoleContributor)

	// 匿名：只看到公开看板
	boards, err := svc.List(ctx, 0, dto.BoardListQuery{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{public.ID}, boardIDs(boards))

	// 成员：公开 ∪ 成员身份
	boards, err = svc.List(ctx, member.ID, dto.BoardListQuery{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{public.ID, private.ID}, boardIDs(boards))

	// 无关用户：只看到公开
	boards, err = svc.List(ctx, outsider.ID, dto.BoardListQuery{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{public.ID}, boardIDs(boards))

	// 创建者没有成员记录：列表里看不到自己的私有看板（既定行为）
	boards, err = svc.List(ctx, creator.ID, dto.BoardListQuery{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{public.ID}, boardIDs(boards))
}

func TestListFilterAndOrdering(t *testing.T) {
	d := newTestData(t)
	svc := NewBoardService(d)
	ctx := context.Background()

	creator := createTestUser(t, d, "creator")
	createTestBoard(t, d, creator, true)
	private := createTestBoard(t, d, creator, false)
	addTestMember(t, d, private, creator, model.RoleAdmin)

	isPublic := false
	boards, err := svc.List(ctx, creator.ID, dto.BoardListQuery{IsPublic: &isPublic})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{private.ID}, boardIDs(boards))

	_, err = svc.List(ctx, creator.ID, dto.BoardListQuery{Ordering: "password_hash"})
	requireKind(t, err, KindValidation)

	_, err = svc.List(ctx, creator.ID, dto.BoardListQuery{Ordering: "-created_at"})
	require.NoError(t, err)
}

func TestGetPrivateBoardHiddenFromOutsider(t *testing.T) {
	d := newTestData(t)
	svc := NewBoardService(d)
	ctx := context.Background()

	creator := createTestUser(t, d, "creator")
	outsider := createTestUser(t, d, "outsider")
	private := createTestBoard(t, d, creator, false)

	_, err := svc.Get(ctx, outsider.ID, private.ID)
	requireKind(t, err, KindNotFound)

	// 详情接口上创建者身份放宽可见性（否则创建者无法管理自己的私有看板）
	detail, err := svc.Get(ctx, creator.ID, private.ID)
	require.NoError(t, err)
	assert.Equal(t, private.ID, detail.ID)
}

func TestCreateDoesNotMaterializeMembership(t *testing.T) {
	d := newTestData(t)
	svc := NewBoardService(d)
	ctx := context.Background()

	creator := createTestUser(t, d, "creator")
	resp, err := svc.Create(ctx, creator.ID, dto.CreateBoardReq{Name: "roadmap"})
	require.NoError(t, err)

	var count int64
	d.DB.Model(&model.BoardMembership{}).Where("board_id = ?", resp.ID).Count(&count)
	assert.Zero(t, count)
}

func TestUpdateRequiresBoardAdmin(t *testing.T) {
	d := newTestData(t)
	svc := NewBoardService(d)
	ctx := context.Background()

	creator := createTestUser(t, d, "creator")
	member := createTestUser(t, d, "member")
	moderator := createTestUser(t, d, "moderator")
	admin := createTestUser(t, d, "admin")
	board := createTestBoard(t, d, creator, true)
	addTestMember(t, d, board, member, model.RoleContributor)
	addTestMember(t, d, board, moderator, model.RoleModerator)
	addTestMember(t, d, board, admin, model.RoleAdmin)

	name := "renamed"
	_, err := svc.Update(ctx, member.ID, board.ID, dto.UpdateBoardReq{Name: &name})
	requireKind(t, err, KindForbidden)

	_, err = svc.Update(ctx, moderator.ID, board.ID, dto.UpdateBoardReq{Name: &name})
	requireKind(t, err, KindForbidden)

	// ADMIN 成员与创建者都可以改
	_, err = svc.Update(ctx, admin.ID, board.ID, dto.UpdateBoardReq{Name: &name})
	require.NoError(t, err)
	_, err = svc.Update(ctx, creator.ID, board.ID, dto.UpdateBoardReq{Name: &name})
	require.NoError(t, err)
}

func TestAddMember(t *testing.T) {
	d := newTestData(t)
	svc := NewBoardService(d)
	ctx := context.Background()

	creator := createTestUser(t, d, "creator")
	target := createTestUser(t, d, "target")
	board := createTestBoard(t, d, creator, false)

	// 默认角色 CONTRIBUTOR
	m, err := svc.AddMember(ctx, creator.ID, board.ID, dto.AddMemberReq{UserID: target.ID})
	require.NoError(t, err)
	assert.Equal(t, model.RoleContributor, m.Role)
	assert.Equal(t, "target", m.Username)

	// 重复添加 → 冲突，且不产生第二行
	_, err = svc.AddMember(ctx, creator.ID, board.ID, dto.AddMemberReq{UserID: target.ID})
	requireKind(t, err, KindConflict)
	var count int64
	d.DB.Model(&model.BoardMembership{}).
		Where("board_id = ? AND user_id = ?", board.ID, target.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	// 不存在的用户 → 404
	_, err = svc.AddMember(ctx, creator.ID, board.ID, dto.AddMemberReq{UserID: 9999})
	requireKind(t, err, KindNotFound)

	// 非法角色 → 校验错误
	other := createTestUser(t, d, "other")
	_, err = svc.AddMember(ctx, creator.ID, board.ID, dto.AddMemberReq{UserID: other.ID, Role: "OWNER"})
	requireKind(t, err, KindValidation)
}

func TestRemoveMember(t *testing.T) {
	d := newTestData(t)
	svc := NewBoardService(d)
	ctx := context.Background()

	creator := createTestUser(t, d, "creator")
	member := createTestUser(t, d, "member")
	stranger := createTestUser(t, d, "stranger")
	board := createTestBoard(t, d, creator, false)
	addTestMember(t, d, board, member, model.RoleContributor)

	// 非成员 → 冲突
	err := svc.RemoveMember(ctx, creator.ID, board.ID, stranger.ID)
	requireKind(t, err, KindConflict)
	assert.Equal(t, "User is not a member of this board", err.Error())

	// 创建者永远不可被移除。创建者默认没有成员记录，
	// 必须命中创建者保护而不是"不是成员"
	err = svc.RemoveMember(ctx, creator.ID, board.ID, creator.ID)
	requireKind(t, err, KindConflict)
	assert.Equal(t, "Cannot remove the board creator", err.Error())

	// 有成员记录时同样不可被移除
	addTestMember(t, d, board, creator, model.RoleAdmin)
	err = svc.RemoveMember(ctx, creator.ID, board.ID, creator.ID)
	requireKind(t, err, KindConflict)
	assert.Equal(t, "Cannot remove the board creator", err.Error())

	err = svc.RemoveMember(ctx, creator.ID, board.ID, member.ID)
	require.NoError(t, err)
	var count int64
	d.DB.Model(&model.BoardMembership{}).
		Where("board_id = ? AND user_id = ?", board.ID, member.ID).Count(&count)
	assert.Zero(t, count)
}

func TestJoin(t *testing.T) {
	d := newTestData(t)
	svc := NewBoardService(d)
	ctx := context.Background()

	creator := createTestUser(t, d, "creator")
	joiner := createTestUser(t, d, "joiner")
	public := createTestBoard(t, d, creator, true)
	private := createTestBoard(t, d, creator, false)

	// 私有看板无论是谁都不能 join
	_, err := svc.Join(ctx, joiner.ID, private.ID)
	requireKind(t, err, KindConflict)
	assert.Equal(t, "Cannot join a private board", err.Error())

	m, err := svc.Join(ctx, joiner.ID, public.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleContributor, m.Role)

	_, err = svc.Join(ctx, joiner.ID, public.ID)
	requireKind(t, err, KindConflict)
	assert.Equal(t, "User is already a member of this board", err.Error())
}

func TestLeave(t *testing.T) {
	d := newTestData(t)
	svc := NewBoardService(d)
	ctx := context.Background()

	creator := createTestUser(t, d, "creator")
	member := createTestUser(t, d, "member")
	board := createTestBoard(t, d, creator, true)
	addTestMember(t, d, board, member, model.RoleContributor)

	// 非成员 → 冲突
	stranger := createTestUser(t, d, "stranger")
	err := svc.Leave(ctx, stranger.ID, board.ID)
	requireKind(t, err, KindConflict)

	// 创建者不能退出，无成员记录时也要命中创建者保护
	err = svc.Leave(ctx, creator.ID, board.ID)
	requireKind(t, err, KindConflict)
	assert.Equal(t, "Board creator cannot leave. Transfer ownership first or delete the board.", err.Error())

	// 有成员记录时同理
	addTestMember(t, d, board, creator, model.RoleAdmin)
	err = svc.Leave(ctx, creator.ID, board.ID)
	requireKind(t, err, KindConflict)

	require.NoError(t, svc.Leave(ctx, member.ID, board.ID))
}

func TestUpdateMemberRole(t *testing.T) {
	d := newTestData(t)
	svc := NewBoardService(d)
	ctx := context.Background()

	creator := createTestUser(t, d, "creator")
	member := createTestUser(t, d, "member")
	board := createTestBoard(t, d, creator, false)
	addTestMember(t, d, board, member, model.RoleContributor)

	// 非法角色 → 校验错误，现有记录不动
	_, err := svc.UpdateMemberRole(ctx, creator.ID, board.ID, dto.UpdateMemberRoleReq{
		UserID: member.ID, Role: "SUPERUSER",
	})
	requireKind(t, err, KindValidation)
	var m model.BoardMembership
	require.NoError(t, d.DB.Where("board_id = ? AND user_id = ?", board.ID, member.ID).First(&m).Error)
	assert.Equal(t, model.RoleContributor, m.Role)

	resp, err := svc.UpdateMemberRole(ctx, creator.ID, board.ID, dto.UpdateMemberRoleReq{
		UserID: member.ID, Role: model.RoleModerator,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleModerator, resp.Role)

	// 不存在的用户 → 404
	_, err = svc.UpdateMemberRole(ctx, creator.ID, board.ID, dto.UpdateMemberRoleReq{
		UserID: 9999, Role: model.RoleAdmin,
	})
	requireKind(t, err, KindNotFound)
}

// 对应完整场景：私有看板创建者添加成员、重复加入、移除创建者
func TestCreatorScenario(t *testing.T) {
	d := newTestData(t)
	svc := NewBoardService(d)
	ctx := context.Background()

	a := createTestUser(t, d, "alice")
	x := createTestUser(t, d, "xavier")

	board, err := svc.Create(ctx, a.ID, dto.CreateBoardReq{Name: "internal", IsPublic: false})
	require.NoError(t, err)

	// A 是创建者，没有成员记录也能执行管理操作
	m, err := svc.AddMember(ctx, a.ID, board.ID, dto.AddMemberReq{UserID: x.ID, Role: model.RoleContributor})
	require.NoError(t, err)
	assert.Equal(t, model.RoleContributor, m.Role)

	// X 已是成员，join 报"已是成员"而不是"私有看板"
	_, err = svc.Join(ctx, x.ID, board.ID)
	requireKind(t, err, KindConflict)
	assert.Equal(t, "User is already a member of this board", err.Error())

	// A 移除自己 → "Cannot remove the board creator"
	// 创建者不落成员表，这里直接走无记录路径
	err = svc.RemoveMember(ctx, a.ID, board.ID, a.ID)
	requireKind(t, err, KindConflict)
	assert.Equal(t, "Cannot remove the board creator", err.Error())
}

func TestDeleteBoardCascades(t *testing.T) {
	d := newTestData(t)
	svc := NewBoardService(d)
	fsvc := NewFeedbackService(d)
	ctx := context.Background()

	creator := createTestUser(t, d, "creator")
	member := createTestUser(t, d, "member")
	board := createTestBoard(t, d, creator, true)
	addTestMember(t, d, board, member, model.RoleContributor)

	item := createTestFeedback(t, d, board, member)
	require.NoError(t, fsvc.Upvote(ctx, member.ID, item.ID))

	require.NoError(t, svc.Delete(ctx, creator.ID, board.ID))

	var count int64
	d.DB.Model(&model.BoardMembership{}).Where("board_id = ?", board.ID).Count(&count)
	assert.Zero(t, count)
	d.DB.Unscoped().Model(&model.Feedback{}).Where("board_id = ?", board.ID).Count(&count)
	assert.Zero(t, count)
	d.DB.Model(&model.Upvote{}).Where("feedback_id = ?", item.ID).Count(&count)
	assert.Zero(t, count)
}
