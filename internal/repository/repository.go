package repository

import (
	"context"
	"errors"
	"time"

	"infogrid-backend-go/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// ListOptions narrows a listing. OnlyVisible keeps published (or active) records.
type ListOptions struct {
	OnlyVisible bool
}

// Repository is the storage contract shared by every content kind.
// Update and Delete return ErrNotFound when no row matched.
type Repository[T any] interface {
	List(ctx context.Context, opts ListOptions) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, item T) error
	Update(ctx context.Context, item T) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type (
	NewsRepository   = Repository[models.News]
	EventRepository  = Repository[models.Event]
	PosterRepository = Repository[models.Poster]
	QRCodeRepository = Repository[models.QRCode]
)

type AdminRepository interface {
	FindByUsername(ctx context.Context, username string) (models.Admin, error)
	Create(ctx context.Context, admin models.Admin) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	Count(ctx context.Context) (int, error)
}

// Repositories bundles one repository per record kind.
type Repositories struct {
	News    NewsRepository
	Events  EventRepository
	Posters PosterRepository
	QRCodes QRCodeRepository
	Admins  AdminRepository
}
