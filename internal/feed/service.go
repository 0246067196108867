package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/petermazzocco/go-feed-api/internal/apperr"
	"github.com/petermazzocco/go-feed-api/internal/images"
	"github.com/petermazzocco/go-feed-api/internal/logger"
	"github.com/petermazzocco/go-feed-api/models"
)

const minFieldLength = 5

// maxPage is the last page whose offset fits in an int.
const maxPage = math.MaxInt / PostsPerPage

// Service runs the feed operations.
type Service struct {
	users     UserStore
	posts     PostStore
	sink      images.Sink
	publisher Publisher
	processor ImageProcessor
	logger    *logger.Logger
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithImageProcessor checks (and possibly rewrites) every image before it is stored.
func WithImageProcessor(p ImageProcessor) Option {
	return func(s *Service) {
		s.processor = p
	}
}

func NewService(
	users UserStore,
	posts PostStore,
	sink images.Sink,
	publisher Publisher,
	logger *logger.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		users:     users,
		posts:     posts,
		sink:      sink,
		publisher: publisher,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetStatus returns the status of the user.
func (s *Service) GetStatus(ctx context.Context, userID string) (string, error) {
	ctx = detach(ctx)
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Status, nil
}

// SetStatus replaces the status of the user.
func (s *Service) SetStatus(ctx context.Context, userID, status string) error {
	ctx = detach(ctx)
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}

	user.Status = status
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save status: %w", err)
	}
	return nil
}

// ListPosts returns the given page of posts; pages below 1 are page 1.
func (s *Service) ListPosts(ctx context.Context, page int) (*Page, error) {
	ctx = detach(ctx)
	if page < 1 {
		page = 1
	}

	total, err := s.posts.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	if page > maxPage {
		return &Page{Posts: []models.Post{}, TotalItems: total}, nil
	}

	posts, err := s.posts.FindPage(ctx, (page-1)*PostsPerPage, PostsPerPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return &Page{Posts: posts, TotalItems: total}, nil
}

// CreatePost stores the image, persists the post and links it to its creator.
func (s *Service) CreatePost(ctx context.Context, in CreatePostInput) (*CreatedPost, error) {
	ctx = detach(ctx)
	if err := validatePost(in.Title, in.Content); err != nil {
		return nil, err
	}
	if !acceptable(in.Image) {
		return nil, ErrNoImage
	}

	imageURL, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:     strings.TrimSpace(in.Title),
		Content:   strings.TrimSpace(in.Content),
		ImageURL:  imageURL,
		CreatorID: in.UserID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		s.clearImage(ctx, imageURL)
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	user, err := s.findUser(ctx, in.UserID)
	if err != nil {
		s.logger.Error("post created without creator back-reference", "post_id", post.ID, "user_id", in.UserID, "error", err)
		return nil, err
	}

	user.AddPost(post.ID)
	if err := s.users.Save(ctx, user); err != nil {
		s.logger.Error("post created without creator back-reference", "post_id", post.ID, "user_id", in.UserID, "error", err)
		return nil, fmt.Errorf("failed to link post to creator: %w", err)
	}

	creator := models.Creator{ID: user.ID, Name: user.Name}
	s.publish(PostEvent{Action: ActionCreate, Post: post, Creator: &creator})

	return &CreatedPost{Post: post, Creator: creator}, nil
}

// GetPost returns any post by id.
func (s *Service) GetPost(ctx context.Context, postID string) (*models.Post, error) {
	ctx = detach(ctx)
	return s.findPost(ctx, postID)
}

// UpdatePost overwrites a post owned by the caller. The previous image file is
// removed when the post ends up pointing at a different one.
func (s *Service) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	ctx = detach(ctx)
	if err := validatePost(in.Title, in.Content); err != nil {
		return nil, err
	}

	upload := in.Image
	if !acceptable(upload) {
		upload = nil
	}
	if upload == nil && in.ImageURL == "" {
		return nil, ErrNoFilePicked
	}

	post, err := s.findPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.CreatorID != in.UserID {
		return nil, ErrNotCreator
	}

	imageURL := in.ImageURL
	if upload != nil {
		imageURL, err = s.storeImage(ctx, upload)
		if err != nil {
			return nil, err
		}
	}

	if imageURL != post.ImageURL {
		s.clearImage(ctx, post.ImageURL)
	}

	post.Title = strings.TrimSpace(in.Title)
	post.Content = strings.TrimSpace(in.Content)
	post.ImageURL = imageURL
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to save post: %w", err)
	}

	s.publish(PostEvent{Action: ActionUpdate, Post: post})

	return post, nil
}

// DeletePost removes a post owned by the caller, its image and the creator's
// reference to it.
func (s *Service) DeletePost(ctx context.Context, postID, userID string) error {
	ctx = detach(ctx)
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.CreatorID != userID {
		return ErrNotCreator
	}

	s.clearImage(ctx, post.ImageURL)

	if err := s.posts.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return ErrPostNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	user, err := s.findUser(ctx, userID)
	if err != nil {
		s.logger.Error("post deleted but creator still references it", "post_id", post.ID, "user_id", userID, "error", err)
		return err
	}

	user.RemovePost(post.ID)
	if err := s.users.Save(ctx, user); err != nil {
		s.logger.Error("post deleted but creator still references it", "post_id", post.ID, "user_id", userID, "error", err)
		return fmt.Errorf("failed to unlink post from creator: %w", err)
	}

	s.publish(PostEvent{Action: ActionDelete, Post: post.ID})

	return nil
}

// detach drops the caller's cancellation. Once started, an operation runs
// to the end even if the client goes away.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func (s *Service) findUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Service) findPost(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// storeImage writes the upload to the sink and returns its normalized path.
func (s *Service) storeImage(ctx context.Context, upload *images.Upload) (string, error) {
	body := upload.Body
	contentType := upload.ContentType

	if s.processor != nil {
		data, err := io.ReadAll(upload.Body)
		if err != nil {
			return "", fmt.Errorf("failed to read image: %w", err)
		}
		data, contentType, err = s.processor.Prepare(data)
		if err != nil {
			return "", apperr.Wrap(apperr.InvalidInput, ErrNoImage.Message, err)
		}
		body = bytes.NewReader(data)
	}

	p, err := s.sink.Save(ctx, images.ObjectName(upload.Filename), contentType, body)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return images.NormalizePath(p), nil
}

// clearImage removes an image file. Failures are logged only: the post
// record, not the file, is authoritative.
func (s *Service) clearImage(ctx context.Context, p string) {
	if p == "" {
		return
	}
	if err := s.sink.Remove(ctx, p); err != nil {
		s.logger.Warn("failed to clear image", "path", p, "error", err)
	}
}

func (s *Service) publish(event PostEvent) {
	if s.publisher == nil {
		s.logger.Warn("post event dropped", "action", event.Action, "error", "no publisher")
		return
	}
	if err := s.publisher.Publish(EventPosts, event); err != nil {
		s.logger.Warn("post event dropped", "action", event.Action, "error", err)
	}
}

func acceptable(upload *images.Upload) bool {
	return upload != nil && upload.Body != nil && images.IsAllowedType(upload.ContentType)
}

func validatePost(title, content string) error {
	var problems []string
	if utf8.RuneCountInString(strings.TrimSpace(title)) < minFieldLength {
		problems = append(problems, fmt.Sprintf("title must be at least %d characters", minFieldLength))
	}
	if utf8.RuneCountInString(strings.TrimSpace(content)) < minFieldLength {
		problems = append(problems, fmt.Sprintf("content must be at least %d characters", minFieldLength))
	}
	if len(problems) > 0 {
		return apperr.Wrap(apperr.InvalidInput, invalidInputMessage, errors.New(strings.Join(problems, "; ")))
	}
	return nil
}
