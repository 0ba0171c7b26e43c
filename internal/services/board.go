package services

import (
	"context"
	"time"

	"infogrid-backend-go/internal/models"
	"infogrid-backend-go/internal/repository"
)

type BoardIntervals struct {
	NewsSeconds         int `json:"newsSeconds"`
	EventSeconds        int `json:"eventSeconds"`
	PosterScrollSeconds int `json:"posterScrollSeconds"`
}

func (i BoardIntervals) News() time.Duration {
	return seconds(i.NewsSeconds, 8)
}

func (i BoardIntervals) Events() time.Duration {
	return seconds(i.EventSeconds, 10)
}

func seconds(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Second
}

// BoardPayload is everything a display renders.
type BoardPayload struct {
	News      []models.News   `json:"news"`
	Events    []models.Event  `json:"events"`
	Posters   []models.Poster `json:"posters"`
	QRCodes   []models.QRCode `json:"qrcodes"`
	Intervals BoardIntervals  `json:"intervals"`
}

type BoardFeed struct {
	Repos     repository.Repositories
	Intervals BoardIntervals
}

func (b BoardFeed) Load(ctx context.Context) (BoardPayload, error) {
	visible := repository.ListOptions{OnlyVisible: true}
	news, err := b.Repos.News.List(ctx, visible)
	if err != nil {
		return BoardPayload{}, WrapError(err, "board news")
	}
	events, err := b.Repos.Events.List(ctx, visible)
	if err != nil {
		return BoardPayload{}, WrapError(err, "board events")
	}
	posters, err := b.Repos.Posters.List(ctx, visible)
	if err != nil {
		return BoardPayload{}, WrapError(err, "board posters")
	}
	codes, err := b.Repos.QRCodes.List(ctx, visible)
	if err != nil {
		return BoardPayload{}, WrapError(err, "board qr codes")
	}
	intervals := b.Intervals
	if intervals.NewsSeconds <= 0 {
		intervals.NewsSeconds = 8
	}
	if intervals.EventSeconds <= 0 {
		intervals.EventSeconds = 10
	}
	if intervals.PosterScrollSeconds <= 0 {
		intervals.PosterScrollSeconds = 30
	}
	return BoardPayload{News: news, Events: events, Posters: posters, QRCodes: codes, Intervals: intervals}, nil
}
