package service

import (
	"context"
	"strings"
	"time"

	"quill/internal/cache"
	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/validation"
)

// dateLayout is the human-readable publication date stored on posts.
const dateLayout = "January 2, 2006"

// PostService implements post authoring and reading.
type PostService struct {
	postRepo repository.PostRepository
	now      func() time.Time
}

// CreatePostInput carries the authoring form plus the acting author.
type CreatePostInput struct {
	AuthorID uint
	Title    string
	Subtitle string
	Body     string
	ImageURL string
}

// UpdatePostInput carries the edit form. Author and date are never updated.
type UpdatePostInput struct {
	PostID   uint
	Title    string
	Subtitle string
	Body     string
	ImageURL string
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		now:      time.Now,
	}
}

func (s *PostService) validateFields(title, subtitle, body, imageURL string) error {
	form := validation.PostForm{
		Title:    title,
		Subtitle: subtitle,
		Body:     body,
		ImageURL: imageURL,
	}
	if errs := form.Validate(); len(errs) > 0 {
		for _, msg := range errs {
			return models.NewValidationError(msg)
		}
	}
	return nil
}

// CreatePost persists a new post, stamping the publication date with the
// current calendar date. Fails with DuplicateTitle when the title is taken;
// nothing is persisted on failure.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.BlogPost, error) {
	if err := s.validateFields(in.Title, in.Subtitle, in.Body, in.ImageURL); err != nil {
		return nil, err
	}

	post := &models.BlogPost{
		Title:    strings.TrimSpace(in.Title),
		Subtitle: strings.TrimSpace(in.Subtitle),
		Body:     in.Body,
		ImageURL: strings.TrimSpace(in.ImageURL),
		Date:     s.now().Format(dateLayout),
		AuthorID: in.AuthorID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// ListPosts returns all posts in insertion order with author names resolved.
// The listing is served cache-aside when Redis is available.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.BlogPost, error) {
	var posts []*models.BlogPost
	err := cache.Aside(ctx, cache.PostsListKey(), &posts, cache.ListTTL, func() error {
		var fetchErr error
		posts, fetchErr = s.postRepo.List(ctx)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost returns a post with its author and its comments.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.BlogPost, error) {
	return s.postRepo.GetByID(ctx, id)
}

// UpdatePost overwrites title, subtitle, image URL, and body of an existing
// post. The author and the original publication date are preserved.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.BlogPost, error) {
	if err := s.validateFields(in.Title, in.Subtitle, in.Body, in.ImageURL); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	post.Title = strings.TrimSpace(in.Title)
	post.Subtitle = strings.TrimSpace(in.Subtitle)
	post.Body = in.Body
	post.ImageURL = strings.TrimSpace(in.ImageURL)

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID)
}

// DeletePost removes a post and its comments.
func (s *PostService) DeletePost(ctx context.Context, id uint) error {
	return s.postRepo.Delete(ctx, id)
}
