package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"infogrid-backend-go/internal/models"
	"infogrid-backend-go/internal/repository"
	"infogrid-backend-go/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	kinds []string
}

func (n *recordingNotifier) ContentChanged(kind string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
}

func (n *recordingNotifier) seen() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.kinds...)
}

type fixture struct {
	dir      string
	store    *storage.LocalStore
	repos    repository.Repositories
	notifier *recordingNotifier
	deps     ContentDeps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir, "/media")
	require.NoError(t, err)
	notifier := &recordingNotifier{}
	return &fixture{
		dir:      dir,
		store:    store,
		repos:    repository.NewMemory(),
		notifier: notifier,
		deps:     ContentDeps{Store: store, Images: ImageProcessor{MaxDim: 1920}, Notifier: notifier},
	}
}

// objects lists stored keys relative to the store root.
func (f *fixture) objects(t *testing.T) []string {
	t.Helper()
	var keys []string
	err := filepath.WalkDir(f.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(f.dir, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	sort.Strings(keys)
	return keys
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func ptr[T any](v T) *T { return &v }

func requireStatus(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	serr, ok := AsServiceError(err)
	require.True(t, ok, "expected ServiceError, got %v", err)
	assert.Equal(t, status, serr.Status)
	if message != "" {
		assert.Equal(t, message, serr.Message)
	}
}

func TestNewsCreateRequiresTitle(t *testing.T) {
	f := newFixture(t)
	svc := NewNewsService(f.repos.News, f.deps)

	_, err := svc.Create(context.Background(), NewsInput{Description: ptr("body")}, &Upload{Filename: "a.png", Data: pngBytes(t, 4, 4)})
	requireStatus(t, err, http.StatusBadRequest, "Title is required")

	_, err = svc.Create(context.Background(), NewsInput{Title: ptr("  <b></b> "), Description: ptr("body")}, nil)
	requireStatus(t, err, http.StatusBadRequest, "Title is required")

	_, err = svc.Create(context.Background(), NewsInput{Title: ptr("Hello")}, nil)
	requireStatus(t, err, http.StatusBadRequest, "Description is required")

	assert.Empty(t, f.objects(t))
	assert.Empty(t, f.notifier.seen())
}

func TestNewsCreateDefaultsAndImage(t *testing.T) {
	f := newFixture(t)
	svc := NewNewsService(f.repos.News, f.deps)

	item, err := svc.Create(context.Background(), NewsInput{
		Title:       ptr("  Launch  "),
		Description: ptr("We <script>alert(1)</script>shipped"),
	}, &Upload{Filename: "photo.txt", Data: pngBytes(t, 8, 8)})
	require.NoError(t, err)

	assert.Equal(t, "Launch", item.Title)
	assert.Equal(t, "We shipped", item.Description)
	assert.Equal(t, DefaultNewsCategory, item.Category)
	assert.True(t, item.IsPublished)
	assert.True(t, strings.HasPrefix(item.ImagePath, "news/"))
	assert.True(t, strings.HasSuffix(item.ImagePath, ".png"), "extension comes from sniffing, not the filename")
	assert.Equal(t, "/media/"+item.ImagePath, item.ImageURL)
	assert.Equal(t, []string{item.ImagePath}, f.objects(t))
	assert.Equal(t, []string{KindNews}, f.notifier.seen())
}

func TestNewsCreateRejectsNonImage(t *testing.T) {
	f := newFixture(t)
	svc := NewNewsService(f.repos.News, f.deps)

	_, err := svc.Create(context.Background(), NewsInput{Title: ptr("T"), Description: ptr("D")},
		&Upload{Filename: "evil.png", Data: []byte("#!/bin/sh\necho hi\n")})
	requireStatus(t, err, http.StatusBadRequest, msgNotAnImage)
	assert.Empty(t, f.objects(t))

	count, err := f.repos.News.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNewsUpdateReplacesImageAfterPersist(t *testing.T) {
	f := newFixture(t)
	svc := NewNewsService(f.repos.News, f.deps)
	ctx := context.Background()

	created, err := svc.Create(ctx, NewsInput{Title: ptr("T"), Description: ptr("D")}, &Upload{Data: pngBytes(t, 4, 4)})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, NewsInput{Priority: ptr(5)}, &Upload{Data: pngBytes(t, 6, 6)})
	require.NoError(t, err)

	assert.NotEqual(t, created.ImagePath, updated.ImagePath)
	assert.Equal(t, "T", updated.Title, "omitted fields keep their value")
	assert.Equal(t, 5, updated.Priority)
	assert.Equal(t, []string{updated.ImagePath}, f.objects(t))
	assert.False(t, f.store.Exists(created.ImagePath))
}

type failingNews struct {
	repository.NewsRepository
}

func (failingNews) Update(context.Context, models.News) error {
	return errors.New("connection reset")
}

func TestNewsUpdateFailureDiscardsNewUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := NewNewsService(f.repos.News, f.deps).Create(ctx, NewsInput{Title: ptr("T"), Description: ptr("D")}, &Upload{Data: pngBytes(t, 4, 4)})
	require.NoError(t, err)

	svc := NewNewsService(failingNews{f.repos.News}, f.deps)
	_, err = svc.Update(ctx, created.ID, NewsInput{}, &Upload{Data: pngBytes(t, 5, 5)})
	require.Error(t, err)
	_, isService := AsServiceError(err)
	assert.False(t, isService, "backend failures are not user errors")

	assert.Equal(t, []string{created.ImagePath}, f.objects(t), "old image kept, new upload removed")
}

func TestNewsGetHidesUnpublishedFromAnonymous(t *testing.T) {
	f := newFixture(t)
	svc := NewNewsService(f.repos.News, f.deps)
	ctx := context.Background()

	item, err := svc.Create(ctx, NewsInput{Title: ptr("Draft"), Description: ptr("D"), IsPublished: ptr(false)}, nil)
	require.NoError(t, err)

	_, err = svc.Get(ctx, item.ID, true)
	requireStatus(t, err, http.StatusNotFound, "News item not found")

	got, err := svc.Get(ctx, item.ID, false)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)

	visible, err := svc.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, visible)
}

func TestNewsUpdateAndDeleteMissing(t *testing.T) {
	f := newFixture(t)
	svc := NewNewsService(f.repos.News, f.deps)

	_, err := svc.Update(context.Background(), "missing", NewsInput{}, nil)
	requireStatus(t, err, http.StatusNotFound, "News item not found")
	requireStatus(t, svc.Delete(context.Background(), "missing"), http.StatusNotFound, "News item not found")
}

func TestNewsRejectsBadSourceURL(t *testing.T) {
	f := newFixture(t)
	svc := NewNewsService(f.repos.News, f.deps)

	_, err := svc.Create(context.Background(), NewsInput{Title: ptr("T"), Description: ptr("D"), SourceURL: ptr("javascript:alert(1)")}, nil)
	requireStatus(t, err, http.StatusBadRequest, "Source URL must be an http(s) URL")
}

func TestEventDateAndTimeValidation(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.repos.Events, f.deps)
	ctx := context.Background()

	_, err := svc.Create(ctx, EventInput{Title: ptr("Fair"), Description: ptr("D"), EventDate: ptr("12/01/2026")}, nil)
	requireStatus(t, err, http.StatusBadRequest, "Event date must match 2006-01-02")

	_, err = svc.Create(ctx, EventInput{Title: ptr("Fair"), Description: ptr("D"), EventTime: ptr("25:00")}, nil)
	requireStatus(t, err, http.StatusBadRequest, "Event time must match 15:04")

	item, err := svc.Create(ctx, EventInput{Title: ptr("Fair"), Description: ptr("D"), EventDate: ptr("2026-12-01"), EventTime: ptr("09:30")}, nil)
	require.NoError(t, err)
	require.NotNil(t, item.EventDate)
	assert.Equal(t, "2026-12-01", item.EventDate.Format(eventDateLayout))

	cleared, err := svc.Update(ctx, item.ID, EventInput{EventDate: ptr("")}, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.EventDate)
	assert.Equal(t, "09:30", cleared.EventTime)
}

func TestEventDeleteRemovesImage(t *testing.T) {
	f := newFixture(t)
	svc := NewEventService(f.repos.Events, f.deps)
	ctx := context.Background()

	item, err := svc.Create(ctx, EventInput{Title: ptr("Fair"), Description: ptr("D")}, &Upload{Data: pngBytes(t, 3, 3)})
	require.NoError(t, err)
	require.True(t, f.store.Exists(item.ImagePath))

	require.NoError(t, svc.Delete(ctx, item.ID))
	assert.Empty(t, f.objects(t))
	_, err = svc.Get(ctx, item.ID)
	requireStatus(t, err, http.StatusNotFound, "Event not found")
}

func TestPosterRules(t *testing.T) {
	f := newFixture(t)
	svc := NewPosterService(f.repos.Posters, f.deps)
	ctx := context.Background()

	_, err := svc.Create(ctx, PosterInput{Title: ptr("No image")}, nil)
	requireStatus(t, err, http.StatusBadRequest, "Image is required")

	poster, err := svc.Create(ctx, PosterInput{}, &Upload{Data: pngBytes(t, 3, 3)})
	require.NoError(t, err)
	assert.True(t, poster.IsPublished)
	assert.Empty(t, poster.Title)

	_, err = svc.Update(ctx, poster.ID, PosterInput{}, &Upload{Data: pngBytes(t, 3, 3)})
	requireStatus(t, err, http.StatusBadRequest, "")

	hidden, err := svc.Update(ctx, poster.ID, PosterInput{IsPublished: ptr(false), Title: ptr("Spring")}, nil)
	require.NoError(t, err)
	assert.False(t, hidden.IsPublished)
	assert.Equal(t, "Spring", hidden.Title)
	assert.Equal(t, poster.ImagePath, hidden.ImagePath)

	require.NoError(t, svc.Delete(ctx, poster.ID))
	assert.Empty(t, f.objects(t))
}

func TestQRCodeRules(t *testing.T) {
	f := newFixture(t)
	svc := NewQRCodeService(f.repos.QRCodes, f.deps)
	ctx := context.Background()

	_, err := svc.Create(ctx, QRCodeInput{Title: ptr("Menu")}, nil)
	requireStatus(t, err, http.StatusBadRequest, "QR image is required")

	_, err = svc.Create(ctx, QRCodeInput{}, &Upload{Data: pngBytes(t, 3, 3)})
	requireStatus(t, err, http.StatusBadRequest, "Title is required")
	assert.Empty(t, f.objects(t))

	code, err := svc.Create(ctx, QRCodeInput{Title: ptr("Menu"), RedirectURL: ptr("https://example.com/menu")}, &Upload{Data: pngBytes(t, 3, 3)})
	require.NoError(t, err)
	assert.True(t, code.IsActive)

	off, err := svc.Update(ctx, code.ID, QRCodeInput{IsActive: ptr(false)}, nil)
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	_, err = svc.Get(ctx, code.ID, true)
	requireStatus(t, err, http.StatusNotFound, "QR code not found")

	require.NoError(t, svc.Delete(ctx, code.ID))
	assert.Empty(t, f.objects(t))
	assert.Equal(t, []string{KindQRCodes, KindQRCodes, KindQRCodes}, f.notifier.seen())
}

type duplicateQRCodes struct {
	repository.QRCodeRepository
}

func (duplicateQRCodes) Create(context.Context, models.QRCode) error {
	return repository.ErrDuplicate
}

func TestCreateConflictDiscardsUpload(t *testing.T) {
	f := newFixture(t)
	svc := NewQRCodeService(duplicateQRCodes{f.repos.QRCodes}, f.deps)

	_, err := svc.Create(context.Background(), QRCodeInput{Title: ptr("Menu")}, &Upload{Data: pngBytes(t, 3, 3)})
	requireStatus(t, err, http.StatusConflict, "qrcodes already exists")
	assert.Empty(t, f.objects(t))
}

func TestNewsPriorityIsBounded(t *testing.T) {
	f := newFixture(t)
	svc := NewNewsService(f.repos.News, f.deps)
	ctx := context.Background()

	_, err := svc.Create(ctx, NewsInput{Title: ptr("T"), Description: ptr("D"), Priority: ptr(2_000_000)}, nil)
	requireStatus(t, err, http.StatusBadRequest, "Priority must be at most 1000000")
	_, err = svc.Create(ctx, NewsInput{Title: ptr("T"), Description: ptr("D"), Priority: ptr(-2_000_000)}, nil)
	requireStatus(t, err, http.StatusBadRequest, "Priority must be at least -1000000")

	item, err := svc.Create(ctx, NewsInput{Title: ptr("T"), Description: ptr("D"), Priority: ptr(1_000_000)}, nil)
	require.NoError(t, err)
	_, err = svc.Update(ctx, item.ID, NewsInput{Priority: ptr(1_000_001)}, nil)
	requireStatus(t, err, http.StatusBadRequest, "Priority must be at most 1000000")

	stored, err := f.repos.News.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1_000_000, stored.Priority)
}
