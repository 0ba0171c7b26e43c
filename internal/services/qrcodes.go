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

type QRCodeInput struct {
	Title       *string
	RedirectURL *string
	IsActive    *bool
}

type qrFields struct {
	Title       string `label:"Title" validate:"required,max=300"`
	RedirectURL string `label:"Redirect URL" validate:"omitempty,http_url,max=2048"`
}

func (in QRCodeInput) apply(item *models.QRCode) {
	item.Title = sanitize.Text(stringOr(in.Title, item.Title))
	item.RedirectURL = strings.TrimSpace(stringOr(in.RedirectURL, item.RedirectURL))
	item.IsActive = boolOr(in.IsActive, item.IsActive)
}

type QRCodeService struct {
	contentBase
	repo repository.QRCodeRepository
}

func NewQRCodeService(repo repository.QRCodeRepository, deps ContentDeps) *QRCodeService {
	return &QRCodeService{contentBase: newContentBase(deps, KindQRCodes, storage.PrefixQRCodes, "QR code not found"), repo: repo}
}

func (s *QRCodeService) List(ctx context.Context, onlyVisible bool) ([]models.QRCode, error) {
	items, err := s.repo.List(ctx, repository.ListOptions{OnlyVisible: onlyVisible})
	if err != nil {
		return nil, WrapError(err, "list qr codes")
	}
	return items, nil
}

func (s *QRCodeService) Get(ctx context.Context, id string, onlyVisible bool) (models.QRCode, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.QRCode{}, s.mapErr(err, "get")
	}
	if onlyVisible && !item.IsActive {
		return models.QRCode{}, ErrNotFound(s.notFound)
	}
	return item, nil
}

func (s *QRCodeService) Create(ctx context.Context, in QRCodeInput, image *Upload) (models.QRCode, error) {
	item := models.QRCode{ID: uuid.NewString(), IsActive: true}
	in.apply(&item)
	if err := validateInput(qrFields{Title: item.Title, RedirectURL: item.RedirectURL}); err != nil {
		return models.QRCode{}, err
	}
	if !image.Present() {
		return models.QRCode{}, ErrBadRequest("QR image is required")
	}
	stored, err := s.storeImage(ctx, *image)
	if err != nil {
		return models.QRCode{}, err
	}
	item.ImageURL, item.ImagePath = stored.URL, stored.Key
	now := s.timestamp()
	item.CreatedAt, item.UpdatedAt = now, now
	if err := s.repo.Create(ctx, item); err != nil {
		s.discard(ctx, stored.Key)
		return models.QRCode{}, s.mapErr(err, "create")
	}
	s.changed("create")
	return item, nil
}

func (s *QRCodeService) Update(ctx context.Context, id string, in QRCodeInput, image *Upload) (models.QRCode, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.QRCode{}, s.mapErr(err, "get")
	}
	item := existing
	in.apply(&item)
	if err := validateInput(qrFields{Title: item.Title, RedirectURL: item.RedirectURL}); err != nil {
		return models.QRCode{}, err
	}
	var fresh storedImage
	if image.Present() {
		if fresh, err = s.storeImage(ctx, *image); err != nil {
			return models.QRCode{}, err
		}
		item.ImageURL, item.ImagePath = fresh.URL, fresh.Key
	}
	item.UpdatedAt = s.timestamp()
	if err := s.repo.Update(ctx, item); err != nil {
		s.discard(ctx, fresh.Key)
		return models.QRCode{}, s.mapErr(err, "update")
	}
	if fresh.Key != "" && existing.ImagePath != fresh.Key {
		s.discard(ctx, existing.ImagePath)
	}
	s.changed("update")
	return item, nil
}

func (s *QRCodeService) Delete(ctx context.Context, id string) error {
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
