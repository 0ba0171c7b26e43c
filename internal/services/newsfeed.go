package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"infogrid-backend-go/internal/metrics"
	"infogrid-backend-go/internal/models"
	"infogrid-backend-go/internal/newsapi"
	"infogrid-backend-go/internal/sanitize"

	"go.uber.org/zap"
)

// NewsFeed is the review step between the external search API and the news table.
type NewsFeed struct {
	Client   *newsapi.Client
	News     *NewsService
	HTTP     *http.Client
	MaxBytes int64
	Log      *zap.Logger
}

func NewNewsFeed(client *newsapi.Client, news *NewsService, maxBytes int64, log *zap.Logger) *NewsFeed {
	if log == nil {
		log = zap.NewNop()
	}
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &NewsFeed{
		Client:   client,
		News:     news,
		HTTP:     &http.Client{Timeout: 20 * time.Second},
		MaxBytes: maxBytes,
		Log:      log,
	}
}

func (f *NewsFeed) Search(ctx context.Context, q newsapi.Query) (newsapi.Result, error) {
	result, err := f.Client.Search(ctx, q)
	if err == nil {
		metrics.RecordNewsAPI("ok")
		return result, nil
	}
	if errors.Is(err, newsapi.ErrNotConfigured) {
		metrics.RecordNewsAPI("unconfigured")
		return newsapi.Result{}, ServiceError{Status: http.StatusInternalServerError, Message: newsapi.ErrNotConfigured.Error()}
	}
	metrics.RecordNewsAPI("error")
	var upstream *newsapi.UpstreamError
	if errors.As(err, &upstream) {
		f.Log.Warn("news search rejected", zap.Int("status", upstream.Status), zap.String("message", upstream.Message))
		return newsapi.Result{}, ErrBadGateway(upstream.Message)
	}
	f.Log.Error("news search failed", zap.Error(err))
	return newsapi.Result{}, ErrBadGateway("Failed to fetch from NewsAPI")
}

// ImportInput is an article after the admin reviewed and possibly edited it.
type ImportInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	SourceURL   string `json:"sourceUrl"`
	Category    string `json:"category"`
}

// Import copies the article image into owned storage and creates one news record.
func (f *NewsFeed) Import(ctx context.Context, in ImportInput) (models.News, error) {
	title := sanitize.Text(in.Title)
	description := sanitize.Multiline(in.Description)
	if title == "" {
		return models.News{}, ErrBadRequest("Title is required")
	}
	if description == "" {
		return models.News{}, ErrBadRequest("Description is required")
	}
	source := sanitize.URL(in.SourceURL)
	input := NewsInput{
		Title:       &title,
		Description: &description,
		SourceURL:   &source,
		Category:    &in.Category,
	}

	var image *Upload
	if raw := strings.TrimSpace(in.ImageURL); raw != "" {
		imageURL := sanitize.URL(raw)
		if imageURL == "" {
			return models.News{}, ErrBadRequest("Image URL must be an http(s) URL")
		}
		data, err := f.download(ctx, imageURL)
		if err != nil {
			return models.News{}, err
		}
		image = &Upload{Filename: path.Base(imageURL), Data: data}
	}

	item, err := f.News.Create(ctx, input, image)
	if err != nil {
		return models.News{}, err
	}
	f.Log.Info("article imported", zap.String("id", item.ID), zap.String("source", source))
	return item, nil
}

func (f *NewsFeed) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, ErrBadRequest("Image URL is invalid")
	}
	req.Header.Set("User-Agent", "InfoGrid/1.0")
	req.Header.Set("Accept", "image/*")
	resp, err := f.HTTP.Do(req)
	if err != nil {
		f.Log.Warn("article image download failed", zap.String("url", rawURL), zap.Error(err))
		return nil, ErrBadGateway("Could not download the article image")
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, ErrBadGateway(fmt.Sprintf("Article image request returned %d", resp.StatusCode))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.MaxBytes+1))
	if err != nil {
		return nil, ErrBadGateway("Could not download the article image")
	}
	if int64(len(data)) > f.MaxBytes {
		return nil, ErrBadRequest("Article image is too large")
	}
	return data, nil
}
