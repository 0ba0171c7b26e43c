package services

import (
	"context"
	"strings"

	"infogrid-backend-go/internal/models"
	"infogrid-backend-go/internal/repository"
	"infogrid-backend-go/internal/sanitize"
	"infogrid-backend-go/internal/storage"

	"github.com/google/uuid"
)

const DefaultNewsCategory = "General"

// NewsInput carries form fields. A nil field keeps the current value on update
// and takes the default on create.
type NewsInput struct {
	Title       *string
	Description *string
	SourceURL   *string
	Category    *string
	IsPublished *bool
	Priority    *int
}

type newsFields struct {
	Title       string `label:"Title" validate:"required,max=300"`
	Description string `label:"Description" validate:"required,max=5000"`
	SourceURL   string `label:"Source URL" validate:"omitempty,http_url,max=2048"`
	Category    string `label:"Category" validate:"max=80"`
	Priority    int    `label:"Priority" validate:"gte=-1000000,lte=1000000"`
}

func (in NewsInput) apply(item *models.News) {
	item.Title = sanitize.Text(stringOr(in.Title, item.Title))
	item.Description = sanitize.Multiline(stringOr(in.Description, item.Description))
	item.SourceURL = strings.TrimSpace(stringOr(in.SourceURL, item.SourceURL))
	item.Category = sanitize.Text(stringOr(in.Category, item.Category))
	if item.Category == "" {
		item.Category = DefaultNewsCategory
	}
	item.IsPublished = boolOr(in.IsPublished, item.IsPublished)
	if in.Priority != nil {
		item.Priority = *in.Priority
	}
}

func validateNews(item models.News) error {
	return validateInput(newsFields{
		Title:       item.Title,
		Description: item.Description,
		SourceURL:   item.SourceURL,
		Category:    item.Category,
		Priority:    item.Priority,
	})
}

type NewsService struct {
	contentBase
	repo repository.NewsRepository
}

func NewNewsService(repo repository.NewsRepository, deps ContentDeps) *NewsService {
	return &NewsService{contentBase: newContentBase(deps, KindNews, storage.PrefixNews, "News item not found"), repo: repo}
}

func (s *NewsService) List(ctx context.Context, onlyVisible bool) ([]models.News, error) {
	items, err := s.repo.List(ctx, repository.ListOptions{OnlyVisible: onlyVisible})
	if err != nil {
		return nil, WrapError(err, "list news")
	}
	return items, nil
}

func (s *NewsService) Get(ctx context.Context, id string, onlyVisible bool) (models.News, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.News{}, s.mapErr(err, "get")
	}
	if onlyVisible && !item.IsPublished {
		return models.News{}, ErrNotFound(s.notFound)
	}
	return item, nil
}

func (s *NewsService) Create(ctx context.Context, in NewsInput, image *Upload) (models.News, error) {
	item := models.News{ID: uuid.NewString(), IsPublished: true}
	in.apply(&item)
	if err := validateNews(item); err != nil {
		return models.News{}, err
	}
	if image.Present() {
		stored, err := s.storeImage(ctx, *image)
		if err != nil {
			return models.News{}, err
		}
		item.ImageURL, item.ImagePath = stored.URL, stored.Key
	}
	now := s.timestamp()
	item.CreatedAt, item.UpdatedAt = now, now
	if err := s.repo.Create(ctx, item); err != nil {
		s.discard(ctx, item.ImagePath)
		return models.News{}, s.mapErr(err, "create")
	}
	s.changed("create")
	return item, nil
}

func (s *NewsService) Update(ctx context.Context, id string, in NewsInput, image *Upload) (models.News, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.News{}, s.mapErr(err, "get")
	}
	item := existing
	in.apply(&item)
	if err := validateNews(item); err != nil {
		return models.News{}, err
	}
	var fresh storedImage
	if image.Present() {
		if fresh, err = s.storeImage(ctx, *image); err != nil {
			return models.News{}, err
		}
		item.ImageURL, item.ImagePath = fresh.URL, fresh.Key
	}
	item.UpdatedAt = s.timestamp()
	if err := s.repo.Update(ctx, item); err != nil {
		s.discard(ctx, fresh.Key)
		return models.News{}, s.mapErr(err, "update")
	}
	if fresh.Key != "" && existing.ImagePath != fresh.Key {
		s.discard(ctx, existing.ImagePath)
	}
	s.changed("update")
	return item, nil
}

func (s *NewsService) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return s.mapErr(err, "get")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapErr(err, "delete")
	}
	s.discard(ctx, existing.ImagePath)
	s.changed("delete")
	return nil
}
