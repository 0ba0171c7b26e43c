package services

import (
	"context"
	"errors"
	"time"

	"infogrid-backend-go/internal/metrics"
	"infogrid-backend-go/internal/repository"
	"infogrid-backend-go/internal/storage"

	"go.uber.org/zap"
)

const (
	KindNews    = "news"
	KindEvents  = "events"
	KindPosters = "posters"
	KindQRCodes = "qrcodes"
)

// ChangeNotifier hears about every successful content mutation.
type ChangeNotifier interface {
	ContentChanged(kind string)
}

// ContentDeps are shared by every content service.
type ContentDeps struct {
	Store    storage.ObjectStore
	Images   ImageProcessor
	Log      *zap.Logger
	Notifier ChangeNotifier
}

type storedImage struct {
	Key string
	URL string
}

type contentBase struct {
	ContentDeps
	kind     string
	prefix   string
	notFound string
	now      func() time.Time
}

func newContentBase(deps ContentDeps, kind, prefix, notFound string) contentBase {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return contentBase{ContentDeps: deps, kind: kind, prefix: prefix, notFound: notFound, now: time.Now}
}

func (b *contentBase) storeImage(ctx context.Context, up Upload) (storedImage, error) {
	prepared, err := b.Images.Prepare(up)
	if err != nil {
		return storedImage{}, err
	}
	key := storage.NewKey(b.prefix, prepared.Ext)
	url, err := b.Store.Put(ctx, key, prepared.Data, prepared.ContentType)
	if err != nil {
		return storedImage{}, WrapError(err, "store image")
	}
	return storedImage{Key: key, URL: url}, nil
}

// discard deletes a stored object. Failures are logged and counted, never returned.
func (b *contentBase) discard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := b.Store.Delete(ctx, key); err != nil {
		metrics.RecordCleanupFailure(b.kind)
		b.Log.Warn("image cleanup failed", zap.String("kind", b.kind), zap.String("key", key), zap.Error(err))
	}
}

func (b *contentBase) changed(op string) {
	metrics.RecordMutation(b.kind, op)
	if b.Notifier != nil {
		b.Notifier.ContentChanged(b.kind)
	}
}

func (b *contentBase) mapErr(err error, action string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound(b.notFound)
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrConflict(b.kind + " already exists")
	}
	return WrapError(err, action+" "+b.kind)
}

func (b *contentBase) timestamp() time.Time {
	return b.now().UTC()
}

func stringOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
