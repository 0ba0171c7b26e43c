package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"infogrid-backend-go/internal/models"
)

// NewMemory returns repositories backed by process memory. Nothing is persisted.
func NewMemory() Repositories {
	return Repositories{
		News: newTable(
			func(n models.News) string { return n.ID },
			func(n models.News) bool { return n.IsPublished },
			newsLess,
		),
		Events: newTable(
			func(e models.Event) string { return e.ID },
			func(models.Event) bool { return true },
			eventLess,
		),
		Posters: newTable(
			func(p models.Poster) string { return p.ID },
			func(p models.Poster) bool { return p.IsPublished },
			func(a, b models.Poster) bool { return a.CreatedAt.After(b.CreatedAt) },
		),
		QRCodes: newTable(
			func(q models.QRCode) string { return q.ID },
			func(q models.QRCode) bool { return q.IsActive },
			func(a, b models.QRCode) bool { return a.CreatedAt.After(b.CreatedAt) },
		),
		Admins: &memoryAdmins{rows: map[string]models.Admin{}},
	}
}

func newsLess(a, b models.News) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func eventLess(a, b models.Event) bool {
	switch {
	case a.EventDate != nil && b.EventDate != nil && !a.EventDate.Equal(*b.EventDate):
		return a.EventDate.Before(*b.EventDate)
	case a.EventDate != nil && b.EventDate == nil:
		return true
	case a.EventDate == nil && b.EventDate != nil:
		return false
	}
	return a.CreatedAt.After(b.CreatedAt)
}

type table[T any] struct {
	mu      sync.RWMutex
	rows    map[string]T
	id      func(T) string
	visible func(T) bool
	less    func(a, b T) bool
}

func newTable[T any](id func(T) string, visible func(T) bool, less func(a, b T) bool) *table[T] {
	return &table[T]{rows: map[string]T{}, id: id, visible: visible, less: less}
}

func (t *table[T]) List(_ context.Context, opts ListOptions) ([]T, error) {
	t.mu.RLock()
	items := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		if opts.OnlyVisible && !t.visible(row) {
			continue
		}
		items = append(items, row)
	}
	t.mu.RUnlock()
	sort.SliceStable(items, func(i, j int) bool { return t.less(items[i], items[j]) })
	return items, nil
}

func (t *table[T]) Get(_ context.Context, id string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return row, nil
}

func (t *table[T]) Create(_ context.Context, item T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := t.id(item)
	if _, exists := t.rows[key]; exists {
		return ErrDuplicate
	}
	t.rows[key] = item
	return nil
}

func (t *table[T]) Update(_ context.Context, item T) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := t.id(item)
	if _, exists := t.rows[key]; !exists {
		return ErrNotFound
	}
	t.rows[key] = item
	return nil
}

func (t *table[T]) Delete(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.rows[id]; !exists {
		return ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

func (t *table[T]) Count(_ context.Context) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows), nil
}

type memoryAdmins struct {
	mu   sync.RWMutex
	rows map[string]models.Admin
}

func (m *memoryAdmins) FindByUsername(_ context.Context, username string) (models.Admin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, admin := range m.rows {
		if admin.Username == username {
			return admin, nil
		}
	}
	return models.Admin{}, ErrNotFound
}

func (m *memoryAdmins) Create(_ context.Context, admin models.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if existing.Username == admin.Username {
			return ErrDuplicate
		}
	}
	m.rows[admin.ID] = admin
	return nil
}

func (m *memoryAdmins) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	admin, ok := m.rows[id]
	if !ok {
		return ErrNotFound
	}
	admin.LastLoginAt = &at
	admin.UpdatedAt = at
	m.rows[id] = admin
	return nil
}

func (m *memoryAdmins) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows), nil
}
