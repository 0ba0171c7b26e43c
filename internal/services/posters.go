package services

import (
	"context"

	"infogrid-backend-go/internal/models"
	"infogrid-backend-go/internal/repository"
	"infogrid-backend-go/internal/sanitize"
	"infogrid-backend-go/internal/storage"

	"github.com/google/uuid"
)

type PosterInput struct {
	Title       *string
	IsPublished *bool
}

type posterFields struct {
	Title string `label:"Title" validate:"max=300"`
}

type PosterService struct {
	contentBase
	repo repository.PosterRepository
}

func NewPosterService(repo repository.PosterRepository, deps ContentDeps) *PosterService {
	return &PosterService{contentBase: newContentBase(deps, KindPosters, storage.PrefixPosters, "Poster not found"), repo: repo}
}

func (s *PosterService) List(ctx context.Context, onlyVisible bool) ([]models.Poster, error) {
	items, err := s.repo.List(ctx, repository.ListOptions{OnlyVisible: onlyVisible})
	if err != nil {
		return nil, WrapError(err, "list posters")
	}
	return items, nil
}

func (s *PosterService) Get(ctx context.Context, id string, onlyVisible bool) (models.Poster, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Poster{}, s.mapErr(err, "get")
	}
	if onlyVisible && !item.IsPublished {
		return models.Poster{}, ErrNotFound(s.notFound)
	}
	return item, nil
}

func (s *PosterService) Create(ctx context.Context, in PosterInput, image *Upload) (models.Poster, error) {
	item := models.Poster{
		ID:          uuid.NewString(),
		Title:       sanitize.Text(stringOr(in.Title, "")),
		IsPublished: boolOr(in.IsPublished, true),
	}
	if err := validateInput(posterFields{Title: item.Title}); err != nil {
		return models.Poster{}, err
	}
	if !image.Present() {
		return models.Poster{}, ErrBadRequest("Image is required")
	}
	stored, err := s.storeImage(ctx, *image)
	if err != nil {
		return models.Poster{}, err
	}
	item.ImageURL, item.ImagePath = stored.URL, stored.Key
	now := s.timestamp()
	item.CreatedAt, item.UpdatedAt = now, now
	if err := s.repo.Create(ctx, item); err != nil {
		s.discard(ctx, stored.Key)
		return models.Poster{}, s.mapErr(err, "create")
	}
	s.changed("create")
	return item, nil
}

// Update only toggles publishing and renames. A poster's image is fixed for its lifetime.
func (s *PosterService) Update(ctx context.Context, id string, in PosterInput, image *Upload) (models.Poster, error) {
	if image.Present() {
		return models.Poster{}, ErrBadRequest("Poster images cannot be replaced; upload a new poster instead")
	}
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Poster{}, s.mapErr(err, "get")
	}
	item.Title = sanitize.Text(stringOr(in.Title, item.Title))
	item.IsPublished = boolOr(in.IsPublished, item.IsPublished)
	if err := validateInput(posterFields{Title: item.Title}); err != nil {
		return models.Poster{}, err
	}
	item.UpdatedAt = s.timestamp()
	if err := s.repo.Update(ctx, item); err != nil {
		return models.Poster{}, s.mapErr(err, "update")
	}
	s.changed("update")
	return item, nil
}

func (s *PosterService) Delete(ctx context.Context, id string) error {
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
