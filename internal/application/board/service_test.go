package board

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/unimate-backend/internal/domain"
)

// --- mocks ---

type mockPostStore struct{ mock.Mock }

func (m *mockPostStore) Put(ctx context.Context, p *domain.Post) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockPostStore) Get(ctx context.Context, postID string) (*domain.Post, error) {
	args := m.Called(ctx, postID)
	if p, _ := args.Get(0).(*domain.Post); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPostStore) Scan(ctx context.Context) ([]domain.Post, error) {
	args := m.Called(ctx)
	if ps, _ := args.Get(0).([]domain.Post); ps != nil {
		return ps, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPostStore) HardDelete(ctx context.Context, postID string) error {
	return m.Called(ctx, postID).Error(0)
}
func (m *mockPostStore) AddLike(ctx context.Context, postID, userID string) error {
	return m.Called(ctx, postID, userID).Error(0)
}
func (m *mockPostStore) RemoveLike(ctx context.Context, postID, userID string) error {
	return m.Called(ctx, postID, userID).Error(0)
}
func (m *mockPostStore) IncrementCommentCount(ctx context.Context, postID string) error {
	return m.Called(ctx, postID).Error(0)
}

type mockCommentStore struct{ mock.Mock }

func (m *mockCommentStore) Put(ctx context.Context, c *domain.Comment) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockCommentStore) ListByPost(ctx context.Context, postID string) ([]domain.Comment, error) {
	args := m.Called(ctx, postID)
	if cs, _ := args.Get(0).([]domain.Comment); cs != nil {
		return cs, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCommentStore) Delete(ctx context.Context, postID, commentID string) error {
	return m.Called(ctx, postID, commentID).Error(0)
}

type mockNotificationStore struct{ mock.Mock }

func (m *mockNotificationStore) Put(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}
func (m *mockNotificationStore) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	args := m.Called(ctx, notificationID)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockNotificationStore) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	if ns, _ := args.Get(0).([]domain.Notification); ns != nil {
		return ns, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockNotificationStore) MarkAsRead(ctx context.Context, notificationID string) error {
	return m.Called(ctx, notificationID).Error(0)
}

type mockObjectStore struct{ mock.Mock }

func (m *mockObjectStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newService(ps *mockPostStore, cs *mockCommentStore, ns *mockNotificationStore) Service {
	return NewService(ServiceDeps{PostRepo: ps, CommentRepo: cs, NotificationRepo: ns})
}

// --- posts ---

func TestCreatePost_AssignsIDAndTimestamps(t *testing.T) {
	ps := &mockPostStore{}
	var stored *domain.Post
	ps.On("Put", mock.Anything, mock.AnythingOfType("*domain.Post")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Post) }).Return(nil)

	p, err := newService(ps, nil, nil).CreatePost(context.Background(), "stu001", "Kim", domain.CreatePostRequest{
		Title: "Lost card", Body: "Seen near the library", Category: "lost-and-found",
	})

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEmpty(t, p.PostID)
	assert.Equal(t, "stu001", stored.AuthorID)
	assert.Equal(t, "Kim", stored.AuthorName)
	assert.False(t, stored.CreatedAt.IsZero())
	assert.Equal(t, stored.CreatedAt, stored.UpdatedAt)
}

func TestListPosts_FiltersByCategoryAndSortsNewestFirst(t *testing.T) {
	ps := &mockPostStore{}
	now := time.Now()
	ps.On("Scan", mock.Anything).Return([]domain.Post{
		{PostID: "old", Category: "free", CreatedAt: now.Add(-2 * time.Hour)},
		{PostID: "other", Category: "market", CreatedAt: now.Add(-1 * time.Hour)},
		{PostID: "new", Category: "free", CreatedAt: now},
	}, nil)

	posts, err := newService(ps, nil, nil).ListPosts(context.Background(), "free")

	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "new", posts[0].PostID)
	assert.Equal(t, "old", posts[1].PostID)
}

func TestDeletePost_OnlyAuthorMay(t *testing.T) {
	ps := &mockPostStore{}
	ps.On("Get", mock.Anything, "p1").Return(&domain.Post{PostID: "p1", AuthorID: "owner"}, nil)

	err := newService(ps, nil, nil).DeletePost(context.Background(), "p1", "intruder")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	ps.AssertNotCalled(t, "HardDelete", mock.Anything, mock.Anything)
}

func TestDeletePost_Author(t *testing.T) {
	ps := &mockPostStore{}
	cs := &mockCommentStore{}
	ps.On("Get", mock.Anything, "p1").Return(&domain.Post{PostID: "p1", AuthorID: "owner"}, nil)
	ps.On("HardDelete", mock.Anything, "p1").Return(nil)
	cs.On("ListByPost", mock.Anything, "p1").Return([]domain.Comment{}, nil)

	require.NoError(t, newService(ps, cs, nil).DeletePost(context.Background(), "p1", "owner"))
	ps.AssertExpectations(t)
}

func TestDeletePost_SweepsCommentsAndAttachment(t *testing.T) {
	ps := &mockPostStore{}
	cs := &mockCommentStore{}
	objStore := &mockObjectStore{}
	ps.On("Get", mock.Anything, "p1").
		Return(&domain.Post{PostID: "p1", AuthorID: "owner", AttachmentKey: "att-key.png"}, nil)
	ps.On("HardDelete", mock.Anything, "p1").Return(nil)
	cs.On("ListByPost", mock.Anything, "p1").Return([]domain.Comment{
		{PostID: "p1", CommentID: "c1"},
		{PostID: "p1", CommentID: "c2"},
	}, nil)
	cs.On("Delete", mock.Anything, "p1", "c1").Return(nil)
	cs.On("Delete", mock.Anything, "p1", "c2").Return(nil)
	objStore.On("Delete", mock.Anything, "att-key.png").Return(nil)

	svc := NewService(ServiceDeps{PostRepo: ps, CommentRepo: cs, AttachmentStore: objStore})
	require.NoError(t, svc.DeletePost(context.Background(), "p1", "owner"))
	cs.AssertExpectations(t)
	objStore.AssertExpectations(t)
}

func TestDeletePost_CleanupFailureStillSucceeds(t *testing.T) {
	ps := &mockPostStore{}
	cs := &mockCommentStore{}
	objStore := &mockObjectStore{}
	ps.On("Get", mock.Anything, "p1").
		Return(&domain.Post{PostID: "p1", AuthorID: "owner", AttachmentKey: "att-key.png"}, nil)
	ps.On("HardDelete", mock.Anything, "p1").Return(nil)
	cs.On("ListByPost", mock.Anything, "p1").Return(nil, errors.New("table throttled"))
	objStore.On("Delete", mock.Anything, "att-key.png").Return(errors.New("bucket gone"))

	svc := NewService(ServiceDeps{PostRepo: ps, CommentRepo: cs, AttachmentStore: objStore})
	require.NoError(t, svc.DeletePost(context.Background(), "p1", "owner"))
}

// --- comments ---

func TestAddComment_NotifiesPostAuthor(t *testing.T) {
	ps := &mockPostStore{}
	cs := &mockCommentStore{}
	ns := &mockNotificationStore{}
	ps.On("Get", mock.Anything, "p1").Return(&domain.Post{PostID: "p1", AuthorID: "owner", Title: "Lost card"}, nil)
	cs.On("Put", mock.Anything, mock.AnythingOfType("*domain.Comment")).Return(nil)
	ps.On("IncrementCommentCount", mock.Anything, "p1").Return(nil)

	var notif *domain.Notification
	ns.On("Put", mock.Anything, mock.AnythingOfType("*domain.Notification")).
		Run(func(args mock.Arguments) { notif = args.Get(1).(*domain.Notification) }).Return(nil)

	c, err := newService(ps, cs, ns).AddComment(context.Background(), "p1", "stu002", "Lee", "I found it")

	require.NoError(t, err)
	assert.NotEmpty(t, c.CommentID)
	require.NotNil(t, notif)
	assert.Equal(t, "owner", notif.UserID)
	assert.Equal(t, domain.NotifyComment, notif.Kind)
	assert.Equal(t, "p1", notif.PostID)
	assert.Zero(t, notif.Read)
}

func TestAddComment_OwnPostDoesNotNotify(t *testing.T) {
	ps := &mockPostStore{}
	cs := &mockCommentStore{}
	ns := &mockNotificationStore{}
	ps.On("Get", mock.Anything, "p1").Return(&domain.Post{PostID: "p1", AuthorID: "owner"}, nil)
	cs.On("Put", mock.Anything, mock.Anything).Return(nil)
	ps.On("IncrementCommentCount", mock.Anything, "p1").Return(nil)

	_, err := newService(ps, cs, ns).AddComment(context.Background(), "p1", "owner", "Kim", "bump")

	require.NoError(t, err)
	ns.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestAddComment_NotificationFailureDoesNotFailComment(t *testing.T) {
	ps := &mockPostStore{}
	cs := &mockCommentStore{}
	ns := &mockNotificationStore{}
	ps.On("Get", mock.Anything, "p1").Return(&domain.Post{PostID: "p1", AuthorID: "owner"}, nil)
	cs.On("Put", mock.Anything, mock.Anything).Return(nil)
	ps.On("IncrementCommentCount", mock.Anything, "p1").Return(nil)
	ns.On("Put", mock.Anything, mock.Anything).Return(errors.New("table throttled"))

	_, err := newService(ps, cs, ns).AddComment(context.Background(), "p1", "stu002", "Lee", "hi")

	require.NoError(t, err)
}

func TestDeleteComment_OnlyAuthorMay(t *testing.T) {
	cs := &mockCommentStore{}
	cs.On("ListByPost", mock.Anything, "p1").
		Return([]domain.Comment{{PostID: "p1", CommentID: "c1", AuthorID: "owner"}}, nil)

	err := newService(nil, cs, nil).DeleteComment(context.Background(), "p1", "c1", "intruder")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	cs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteComment_Unknown(t *testing.T) {
	cs := &mockCommentStore{}
	cs.On("ListByPost", mock.Anything, "p1").Return([]domain.Comment{}, nil)

	err := newService(nil, cs, nil).DeleteComment(context.Background(), "p1", "ghost", "owner")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeleteComment_Author(t *testing.T) {
	cs := &mockCommentStore{}
	cs.On("ListByPost", mock.Anything, "p1").
		Return([]domain.Comment{{PostID: "p1", CommentID: "c1", AuthorID: "owner"}}, nil)
	cs.On("Delete", mock.Anything, "p1", "c1").Return(nil)

	require.NoError(t, newService(nil, cs, nil).DeleteComment(context.Background(), "p1", "c1", "owner"))
	cs.AssertExpectations(t)
}

// --- likes ---

func TestToggleLike_AddsWhenAbsent(t *testing.T) {
	ps := &mockPostStore{}
	ns := &mockNotificationStore{}
	ps.On("Get", mock.Anything, "p1").Return(&domain.Post{PostID: "p1", AuthorID: "owner", Title: "t"}, nil)
	ps.On("AddLike", mock.Anything, "p1", "stu002").Return(nil)
	ns.On("Put", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(nil)

	liked, err := newService(ps, nil, ns).ToggleLike(context.Background(), "p1", "stu002", "Lee")

	require.NoError(t, err)
	assert.True(t, liked)
	ps.AssertCalled(t, "AddLike", mock.Anything, "p1", "stu002")
}

func TestToggleLike_RemovesWhenPresentAndStaysQuiet(t *testing.T) {
	ps := &mockPostStore{}
	ns := &mockNotificationStore{}
	ps.On("Get", mock.Anything, "p1").
		Return(&domain.Post{PostID: "p1", AuthorID: "owner", Likes: []string{"stu002"}}, nil)
	ps.On("RemoveLike", mock.Anything, "p1", "stu002").Return(nil)

	liked, err := newService(ps, nil, ns).ToggleLike(context.Background(), "p1", "stu002", "Lee")

	require.NoError(t, err)
	assert.False(t, liked)
	ns.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestToggleLike_OwnPostDoesNotNotify(t *testing.T) {
	ps := &mockPostStore{}
	ns := &mockNotificationStore{}
	ps.On("Get", mock.Anything, "p1").Return(&domain.Post{PostID: "p1", AuthorID: "owner"}, nil)
	ps.On("AddLike", mock.Anything, "p1", "owner").Return(nil)

	liked, err := newService(ps, nil, ns).ToggleLike(context.Background(), "p1", "owner", "Kim")

	require.NoError(t, err)
	assert.True(t, liked)
	ns.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

// --- notifications ---

func TestMarkNotificationRead_OwnershipEnforced(t *testing.T) {
	ns := &mockNotificationStore{}
	ns.On("Get", mock.Anything, "n1").Return(&domain.Notification{NotificationID: "n1", UserID: "owner"}, nil)

	err := newService(nil, nil, ns).MarkNotificationRead(context.Background(), "intruder", "n1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	ns.AssertNotCalled(t, "MarkAsRead", mock.Anything, mock.Anything)
}

func TestMarkNotificationRead_Owner(t *testing.T) {
	ns := &mockNotificationStore{}
	ns.On("Get", mock.Anything, "n1").Return(&domain.Notification{NotificationID: "n1", UserID: "owner"}, nil)
	ns.On("MarkAsRead", mock.Anything, "n1").Return(nil)

	require.NoError(t, newService(nil, nil, ns).MarkNotificationRead(context.Background(), "owner", "n1"))
	ns.AssertExpectations(t)
}
