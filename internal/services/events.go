package services

import (
	"context"
	"strings"
	"time"

	"infogrid-backend-go/internal/models"
	"infogrid-backend-go/internal/repository"
	"infogrid-backend-go/internal/sanitize"
	"infogrid-backend-go/internal/storage"

	"github.com/google/uuid"
)

const eventDateLayout = "2006-01-02"

type EventInput struct {
	Title       *string
	Description *string
	EventDate   *string
	EventTime   *string
	EventURL    *string
}

type eventFields struct {
	Title       string `label:"Title" validate:"required,max=300"`
	Description string `label:"Description" validate:"required,max=5000"`
	EventDate   string `label:"Event date" validate:"omitempty,datetime=2006-01-02"`
	EventTime   string `label:"Event time" validate:"omitempty,datetime=15:04"`
	EventURL    string `label:"Event URL" validate:"omitempty,http_url,max=2048"`
}

func (in EventInput) resolve(item models.Event) eventFields {
	date := ""
	if item.EventDate != nil {
		date = item.EventDate.Format(eventDateLayout)
	}
	return eventFields{
		Title:       sanitize.Text(stringOr(in.Title, item.Title)),
		Description: sanitize.Multiline(stringOr(in.Description, item.Description)),
		EventDate:   strings.TrimSpace(stringOr(in.EventDate, date)),
		EventTime:   strings.TrimSpace(stringOr(in.EventTime, item.EventTime)),
		EventURL:    strings.TrimSpace(stringOr(in.EventURL, item.EventURL)),
	}
}

// applyTo expects validated fields.
func (f eventFields) applyTo(item *models.Event) {
	item.Title = f.Title
	item.Description = f.Description
	item.EventTime = f.EventTime
	item.EventURL = f.EventURL
	item.EventDate = nil
	if f.EventDate != "" {
		if parsed, err := time.Parse(eventDateLayout, f.EventDate); err == nil {
			item.EventDate = &parsed
		}
	}
}

type EventService struct {
	contentBase
	repo repository.EventRepository
}

func NewEventService(repo repository.EventRepository, deps ContentDeps) *EventService {
	return &EventService{contentBase: newContentBase(deps, KindEvents, storage.PrefixEvents, "Event not found"), repo: repo}
}

// List ignores onlyVisible beyond signature parity: events have no publish flag.
func (s *EventService) List(ctx context.Context, onlyVisible bool) ([]models.Event, error) {
	items, err := s.repo.List(ctx, repository.ListOptions{OnlyVisible: onlyVisible})
	if err != nil {
		return nil, WrapError(err, "list events")
	}
	return items, nil
}

func (s *EventService) Get(ctx context.Context, id string) (models.Event, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Event{}, s.mapErr(err, "get")
	}
	return item, nil
}

func (s *EventService) Create(ctx context.Context, in EventInput, image *Upload) (models.Event, error) {
	item := models.Event{ID: uuid.NewString()}
	fields := in.resolve(item)
	if err := validateInput(fields); err != nil {
		return models.Event{}, err
	}
	fields.applyTo(&item)
	if image.Present() {
		stored, err := s.storeImage(ctx, *image)
		if err != nil {
			return models.Event{}, err
		}
		item.ImageURL, item.ImagePath = stored.URL, stored.Key
	}
	now := s.timestamp()
	item.CreatedAt, item.UpdatedAt = now, now
	if err := s.repo.Create(ctx, item); err != nil {
		s.discard(ctx, item.ImagePath)
		return models.Event{}, s.mapErr(err, "create")
	}
	s.changed("create")
	return item, nil
}

func (s *EventService) Update(ctx context.Context, id string, in EventInput, image *Upload) (models.Event, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return models.Event{}, s.mapErr(err, "get")
	}
	fields := in.resolve(existing)
	if err := validateInput(fields); err != nil {
		return models.Event{}, err
	}
	item := existing
	fields.applyTo(&item)
	var fresh storedImage
	if image.Present() {
		if fresh, err = s.storeImage(ctx, *image); err != nil {
			return models.Event{}, err
		}
		item.ImageURL, item.ImagePath = fresh.URL, fresh.Key
	}
	item.UpdatedAt = s.timestamp()
	if err := s.repo.Update(ctx, item); err != nil {
		s.discard(ctx, fresh.Key)
		return models.Event{}, s.mapErr(err, "update")
	}
	if fresh.Key != "" && existing.ImagePath != fresh.Key {
		s.discard(ctx, existing.ImagePath)
	}
	s.changed("update")
	return item, nil
}

func (s *EventService) Delete(ctx context.Context, id string) error {
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
