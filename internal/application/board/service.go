package board

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/unimate-backend/internal/domain"
	"github.com/unimate-backend/internal/pkg/id"
)

type Service interface {
	CreatePost(ctx context.Context, authorID, authorName string, req domain.CreatePostRequest) (*domain.Post, error)
	ListPosts(ctx context.Context, category string) ([]domain.Post, error)
	GetPost(ctx context.Context, postID string) (*domain.Post, []domain.Comment, error)
	DeletePost(ctx context.Context, postID, requesterID string) error
	AddComment(ctx context.Context, postID, authorID, authorName, body string) (*domain.Comment, error)
	DeleteComment(ctx context.Context, postID, commentID, requesterID string) error
	ToggleLike(ctx context.Context, postID, userID, actorName string) (liked bool, err error)
	ListUnreadNotifications(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, notificationID string) error
}

type postStore interface {
	Put(ctx context.Context, p *domain.Post) error
	Get(ctx context.Context, postID string) (*domain.Post, error)
	Scan(ctx context.Context) ([]domain.Post, error)
	HardDelete(ctx context.Context, postID string) error
	AddLike(ctx context.Context, postID, userID string) error
	RemoveLike(ctx context.Context, postID, userID string) error
	IncrementCommentCount(ctx context.Context, postID string) error
}

type commentStore interface {
	Put(ctx context.Context, c *domain.Comment) error
	ListByPost(ctx context.Context, postID string) ([]domain.Comment, error)
	Delete(ctx context.Context, postID, commentID string) error
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) error
}

type objectStore interface {
	Delete(ctx context.Context, key string) error
}

type service struct {
	posts       postStore
	comments    commentStore
	notifs      notificationStore
	attachments objectStore
}

type ServiceDeps struct {
	PostRepo         postStore
	CommentRepo      commentStore
	NotificationRepo notificationStore
	AttachmentStore  objectStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		posts:       deps.PostRepo,
		comments:    deps.CommentRepo,
		notifs:      deps.NotificationRepo,
		attachments: deps.AttachmentStore,
	}
}

func (s *service) CreatePost(ctx context.Context, authorID, authorName string, req domain.CreatePostRequest) (*domain.Post, error) {
	now := time.Now().UTC()
	p := &domain.Post{
		PostID:        id.New(),
		AuthorID:      authorID,
		AuthorName:    authorName,
		Title:         req.Title,
		Body:          req.Body,
		Category:      req.Category,
		AttachmentKey: req.AttachmentKey,
		AttachmentURL: req.AttachmentURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.posts.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) ListPosts(ctx context.Context, category string) ([]domain.Post, error) {
	posts, err := s.posts.Scan(ctx)
	if err != nil {
		return nil, err
	}
	if category != "" {
		filtered := posts[:0]
		for _, p := range posts {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

func (s *service) GetPost(ctx context.Context, postID string) (*domain.Post, []domain.Comment, error) {
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, nil, err
	}
	return p, comments, nil
}

func (s *service) DeletePost(ctx context.Context, postID, requesterID string) error {
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return err
	}
	if p.AuthorID != requesterID {
		return fmt.Errorf("only the author can delete a post: %w", domain.ErrForbidden)
	}
	if err := s.posts.HardDelete(ctx, postID); err != nil {
		return err
	}
	// The post is gone; sweep its comments and attachment best-effort so a
	// cleanup failure cannot resurrect it.
	if comments, err := s.comments.ListByPost(ctx, postID); err == nil {
		for _, c := range comments {
			_ = s.comments.Delete(ctx, postID, c.CommentID)
		}
	}
	if p.AttachmentKey != "" && s.attachments != nil {
		_ = s.attachments.Delete(ctx, p.AttachmentKey)
	}
	return nil
}

func (s *service) AddComment(ctx context.Context, postID, authorID, authorName, body string) (*domain.Comment, error) {
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	c := &domain.Comment{
		PostID:     postID,
		CommentID:  id.New(),
		AuthorID:   authorID,
		AuthorName: authorName,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.comments.Put(ctx, c); err != nil {
		return nil, err
	}
	if err := s.posts.IncrementCommentCount(ctx, postID); err != nil {
		return nil, err
	}
	if p.AuthorID != authorID {
		s.notify(ctx, p, authorName, domain.NotifyComment,
			fmt.Sprintf("%s commented on your post \"%s\"", authorName, p.Title))
	}
	return c, nil
}

func (s *service) DeleteComment(ctx context.Context, postID, commentID, requesterID string) error {
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return err
	}
	for _, c := range comments {
		if c.CommentID != commentID {
			continue
		}
		if c.AuthorID != requesterID {
			return fmt.Errorf("only the author can delete a comment: %w", domain.ErrForbidden)
		}
		return s.comments.Delete(ctx, postID, commentID)
	}
	return fmt.Errorf("comment not found: %w", domain.ErrNotFound)
}

func (s *service) ToggleLike(ctx context.Context, postID, userID, actorName string) (bool, error) {
	p, err := s.posts.Get(ctx, postID)
	if err != nil {
		return false, err
	}
	for _, likerID := range p.Likes {
		if likerID == userID {
			return false, s.posts.RemoveLike(ctx, postID, userID)
		}
	}
	if err := s.posts.AddLike(ctx, postID, userID); err != nil {
		return false, err
	}
	if p.AuthorID != userID {
		s.notify(ctx, p, actorName, domain.NotifyLike,
			fmt.Sprintf("%s liked your post \"%s\"", actorName, p.Title))
	}
	return true, nil
}

func (s *service) ListUnreadNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.notifs.ListUnread(ctx, userID)
}

func (s *service) MarkNotificationRead(ctx context.Context, userID, notificationID string) error {
	n, err := s.notifs.Get(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	return s.notifs.MarkAsRead(ctx, notificationID)
}

// notify writes best-effort: a lost notification must not fail the action
// that triggered it.
func (s *service) notify(ctx context.Context, p *domain.Post, actorName, kind, message string) {
	_ = s.notifs.Put(ctx, &domain.Notification{
		NotificationID: id.New(),
		UserID:         p.AuthorID,
		Kind:           kind,
		PostID:         p.PostID,
		ActorName:      actorName,
		Message:        message,
		CreatedAt:      time.Now().UTC(),
	})
}
