package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL  = "https://newsapi.org/v2"
	DefaultQuery    = "artificial intelligence"
	DefaultPageSize = 12
	MaxPageSize     = 20

	removedMarker = "[Removed]"
	userAgent     = "InfoGrid/1.0"
)

var ErrNotConfigured = errors.New("NEWSAPI_KEY is not configured")

type Source struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

type Article struct {
	Source      Source  `json:"source"`
	Author      *string `json:"author,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Content     *string `json:"content"`
	URL         string  `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	PublishedAt string  `json:"publishedAt"`
}

type Query struct {
	Q        string
	Page     int
	PageSize int
}

type Result struct {
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

// UpstreamError carries a non-2xx answer from the news API.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("newsapi: %d %s", e.Status, e.Message)
}

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func New(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Normalize applies defaults and the page size cap.
func (q Query) Normalize() Query {
	q.Q = strings.TrimSpace(q.Q)
	if q.Q == "" {
		q.Q = DefaultQuery
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	return q
}

// Search queries /everything and drops articles with missing or removed title/description.
func (c *Client) Search(ctx context.Context, q Query) (Result, error) {
	if c.APIKey == "" {
		return Result{}, ErrNotConfigured
	}
	q = q.Normalize()
	params := url.Values{}
	params.Set("q", q.Q)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("pageSize", strconv.Itoa(q.PageSize))
	params.Set("apiKey", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/everything?"+params.Encode(), nil)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("newsapi request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return Result{}, fmt.Errorf("newsapi read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload := struct {
			Message string `json:"message"`
		}{}
		_ = json.Unmarshal(body, &payload)
		if payload.Message == "" {
			payload.Message = "NewsAPI request failed"
		}
		return Result{}, &UpstreamError{Status: resp.StatusCode, Message: payload.Message}
	}

	var raw struct {
		Status       string    `json:"status"`
		TotalResults int       `json:"totalResults"`
		Articles     []rawItem `json:"articles"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Result{}, fmt.Errorf("newsapi decode: %w", err)
	}
	articles := make([]Article, 0, len(raw.Articles))
	for _, item := range raw.Articles {
		if !usable(item.Title) || !usable(item.Description) {
			continue
		}
		articles = append(articles, Article{
			Source:      item.Source,
			Author:      item.Author,
			Title:       *item.Title,
			Description: *item.Description,
			Content:     item.Content,
			URL:         item.URL,
			URLToImage:  item.URLToImage,
			PublishedAt: item.PublishedAt,
		})
	}
	return Result{TotalResults: raw.TotalResults, Articles: articles}, nil
}

type rawItem struct {
	Source      Source  `json:"source"`
	Author      *string `json:"author"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Content     *string `json:"content"`
	URL         string  `json:"url"`
	URLToImage  *string `json:"urlToImage"`
	PublishedAt string  `json:"publishedAt"`
}

func usable(value *string) bool {
	if value == nil {
		return false
	}
	trimmed := strings.TrimSpace(*value)
	return trimmed != "" && trimmed != removedMarker
}
