package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/blogapi/internal/common"
	"github.com/dmitrijs2005/blogapi/internal/logging"
	"github.com/dmitrijs2005/blogapi/internal/server/broadcast"
	"github.com/dmitrijs2005/blogapi/internal/server/metrics"
	"github.com/dmitrijs2005/blogapi/internal/server/models"
	"github.com/dmitrijs2005/blogapi/internal/server/repositories/repomanager"
)

// BlogService implements CRUD over blog posts and announces new posts on
// the broadcast channel.
type BlogService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	publisher      broadcast.Publisher
	log            logging.Logger
	metrics        *metrics.Metrics
	publishTimeout time.Duration
}

func NewBlogService(db *sql.DB, m repomanager.RepositoryManager, publisher broadcast.Publisher,
	log logging.Logger, met *metrics.Metrics, publishTimeout time.Duration) *BlogService {
	return &BlogService{
		db:             db,
		repomanager:    m,
		publisher:      publisher,
		log:            log.With("module", "blogs"),
		metrics:        met,
		publishTimeout: publishTimeout,
	}
}

// List returns all posts ordered by creation time, oldest first.
func (s *BlogService) List(ctx context.Context) ([]*models.Blog, error) {
	blogs, err := s.repomanager.Blogs(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing blogs: %w", err)
	}
	return blogs, nil
}

func (s *BlogService) Get(ctx context.Context, id string) (*models.Blog, error) {
	blog, err := s.repomanager.Blogs(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error reading blog: %w", err)
	}
	return blog, nil
}

// Create stores a post and then publishes the new-blog event. The post is
// returned even if publishing fails.
func (s *BlogService) Create(ctx context.Context, title, snippet, body string) (*models.Blog, error) {
	if err := validateBlog(title, snippet, body); err != nil {
		return nil, err
	}

	blog, err := s.repomanager.Blogs(s.db).Create(ctx, &models.Blog{Title: title, Snippet: snippet, Body: body})
	if err != nil {
		return nil, fmt.Errorf("error creating blog: %w", err)
	}
	s.metrics.BlogCreated()

	s.announce(ctx, blog)
	return blog, nil
}

func (s *BlogService) announce(ctx context.Context, blog *models.Blog) {
	ctx = context.WithoutCancel(ctx)
	if s.publishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.publishTimeout)
		defer cancel()
	}

	payload := broadcast.NewBlogPayload{Message: broadcast.NewBlogMessage, Blog: blog}
	if err := s.publisher.Publish(ctx, common.BlogsChannel, common.NewBlogEvent, payload); err != nil {
		s.metrics.PublishFailed(common.NewBlogEvent)
		s.log.Error(ctx, "new blog event not published", "blog_id", blog.ID, "error", err)
	}
}

// Update replaces all three fields. An unknown id is reported as not found
// even when the fields are also invalid.
func (s *BlogService) Update(ctx context.Context, id, title, snippet, body string) (*models.Blog, error) {
	if err := validateBlog(title, snippet, body); err != nil {
		if _, gerr := s.Get(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, err
	}

	blog, err := s.repomanager.Blogs(s.db).Update(ctx, &models.Blog{ID: id, Title: title, Snippet: snippet, Body: body})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating blog: %w", err)
	}
	return blog, nil
}

func (s *BlogService) Delete(ctx context.Context, id string) error {
	if err := s.repomanager.Blogs(s.db).Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error deleting blog: %w", err)
	}
	return nil
}

func validateBlog(title, snippet, body string) error {
	if title == "" || snippet == "" || body == "" {
		return fmt.Errorf("%w: title, snippet and body are required", common.ErrValidation)
	}
	return nil
}
