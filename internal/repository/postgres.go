package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"infogrid-backend-go/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const uniqueViolation = "23505"

// NewPostgres returns repositories over the tables created by migrations/.
func NewPostgres(db *sqlx.DB) Repositories {
	return Repositories{
		News:    &pgNews{db: db},
		Events:  &pgEvents{db: db},
		Posters: &pgPosters{db: db},
		QRCodes: &pgQRCodes{db: db},
		Admins:  &pgAdmins{db: db},
	}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func duplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func count(ctx context.Context, db *sqlx.DB, query string) (int, error) {
	var n int
	err := db.GetContext(ctx, &n, query)
	return n, err
}

type pgNews struct{ db *sqlx.DB }

const newsColumns = `id, title, description, image_url, image_path, source_url, category, is_published, priority, created_at, updated_at`

func (r *pgNews) List(ctx context.Context, opts ListOptions) ([]models.News, error) {
	query := `SELECT ` + newsColumns + ` FROM news_items `
	if opts.OnlyVisible {
		query += "WHERE is_published = TRUE\n"
	}
	query += "ORDER BY priority DESC, created_at DESC"
	items := []models.News{}
	err := r.db.SelectContext(ctx, &items, query)
	return items, err
}

func (r *pgNews) Get(ctx context.Context, id string) (models.News, error) {
	var item models.News
	err := r.db.GetContext(ctx, &item, `SELECT `+newsColumns+` FROM news_items WHERE id = $1`, id)
	return item, notFound(err)
}

func (r *pgNews) Create(ctx context.Context, item models.News) error {
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO news_items (`+newsColumns+`)
VALUES (:id, :title, :description, :image_url, :image_path, :source_url, :category, :is_published, :priority, :created_at, :updated_at)
`, item)
	return duplicate(err)
}

func (r *pgNews) Update(ctx context.Context, item models.News) error {
	return affected(r.db.NamedExecContext(ctx, `
UPDATE news_items
SET title = :title, description = :description, image_url = :image_url, image_path = :image_path,
    source_url = :source_url, category = :category, is_published = :is_published, priority = :priority,
    updated_at = :updated_at
WHERE id = :id
`, item))
}

func (r *pgNews) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM news_items WHERE id = $1`, id))
}

func (r *pgNews) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM news_items`)
}

type pgEvents struct{ db *sqlx.DB }

const eventColumns = `id, title, description, event_date, event_time, event_url, image_url, image_path, created_at, updated_at`

func (r *pgEvents) List(ctx context.Context, _ ListOptions) ([]models.Event, error) {
	items := []models.Event{}
	err := r.db.SelectContext(ctx, &items, `
SELECT `+eventColumns+`
FROM events
ORDER BY event_date ASC NULLS LAST, created_at DESC
`)
	return items, err
}

func (r *pgEvents) Get(ctx context.Context, id string) (models.Event, error) {
	var item models.Event
	err := r.db.GetContext(ctx, &item, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return item, notFound(err)
}

func (r *pgEvents) Create(ctx context.Context, item models.Event) error {
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO events (`+eventColumns+`)
VALUES (:id, :title, :description, :event_date, :event_time, :event_url, :image_url, :image_path, :created_at, :updated_at)
`, item)
	return duplicate(err)
}

func (r *pgEvents) Update(ctx context.Context, item models.Event) error {
	return affected(r.db.NamedExecContext(ctx, `
UPDATE events
SET title = :title, description = :description, event_date = :event_date, event_time = :event_time,
    event_url = :event_url, image_url = :image_url, image_path = :image_path, updated_at = :updated_at
WHERE id = :id
`, item))
}

func (r *pgEvents) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id))
}

func (r *pgEvents) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM events`)
}

type pgPosters struct{ db *sqlx.DB }

const posterColumns = `id, title, image_url, image_path, is_published, created_at, updated_at`

func (r *pgPosters) List(ctx context.Context, opts ListOptions) ([]models.Poster, error) {
	query := `SELECT ` + posterColumns + ` FROM posters `
	if opts.OnlyVisible {
		query += "WHERE is_published = TRUE\n"
	}
	query += "ORDER BY created_at DESC"
	items := []models.Poster{}
	err := r.db.SelectContext(ctx, &items, query)
	return items, err
}

func (r *pgPosters) Get(ctx context.Context, id string) (models.Poster, error) {
	var item models.Poster
	err := r.db.GetContext(ctx, &item, `SELECT `+posterColumns+` FROM posters WHERE id = $1`, id)
	return item, notFound(err)
}

func (r *pgPosters) Create(ctx context.Context, item models.Poster) error {
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO posters (`+posterColumns+`)
VALUES (:id, :title, :image_url, :image_path, :is_published, :created_at, :updated_at)
`, item)
	return duplicate(err)
}

func (r *pgPosters) Update(ctx context.Context, item models.Poster) error {
	return affected(r.db.NamedExecContext(ctx, `
UPDATE posters
SET title = :title, image_url = :image_url, image_path = :image_path, is_published = :is_published, updated_at = :updated_at
WHERE id = :id
`, item))
}

func (r *pgPosters) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM posters WHERE id = $1`, id))
}

func (r *pgPosters) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM posters`)
}

type pgQRCodes struct{ db *sqlx.DB }

const qrColumns = `id, title, image_url, image_path, redirect_url, is_active, created_at, updated_at`

func (r *pgQRCodes) List(ctx context.Context, opts ListOptions) ([]models.QRCode, error) {
	query := `SELECT ` + qrColumns + ` FROM qr_codes `
	if opts.OnlyVisible {
		query += "WHERE is_active = TRUE\n"
	}
	query += "ORDER BY created_at DESC"
	items := []models.QRCode{}
	err := r.db.SelectContext(ctx, &items, query)
	return items, err
}

func (r *pgQRCodes) Get(ctx context.Context, id string) (models.QRCode, error) {
	var item models.QRCode
	err := r.db.GetContext(ctx, &item, `SELECT `+qrColumns+` FROM qr_codes WHERE id = $1`, id)
	return item, notFound(err)
}

func (r *pgQRCodes) Create(ctx context.Context, item models.QRCode) error {
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO qr_codes (`+qrColumns+`)
VALUES (:id, :title, :image_url, :image_path, :redirect_url, :is_active, :created_at, :updated_at)
`, item)
	return duplicate(err)
}

func (r *pgQRCodes) Update(ctx context.Context, item models.QRCode) error {
	return affected(r.db.NamedExecContext(ctx, `
UPDATE qr_codes
SET title = :title, image_url = :image_url, image_path = :image_path, redirect_url = :redirect_url,
    is_active = :is_active, updated_at = :updated_at
WHERE id = :id
`, item))
}

func (r *pgQRCodes) Delete(ctx context.Context, id string) error {
	return affected(r.db.ExecContext(ctx, `DELETE FROM qr_codes WHERE id = $1`, id))
}

func (r *pgQRCodes) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM qr_codes`)
}

type pgAdmins struct{ db *sqlx.DB }

func (r *pgAdmins) FindByUsername(ctx context.Context, username string) (models.Admin, error) {
	var admin models.Admin
	err := r.db.GetContext(ctx, &admin, `
SELECT id, username, password_hash, role, last_login_at, created_at, updated_at
FROM admins
WHERE username = $1
`, username)
	return admin, notFound(err)
}

func (r *pgAdmins) Create(ctx context.Context, admin models.Admin) error {
	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO admins (id, username, password_hash, role, last_login_at, created_at, updated_at)
VALUES (:id, :username, :password_hash, :role, :last_login_at, :created_at, :updated_at)
`, admin)
	return duplicate(err)
}

func (r *pgAdmins) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return affected(r.db.ExecContext(ctx, `UPDATE admins SET last_login_at = $1, updated_at = $1 WHERE id = $2`, at, id))
}

func (r *pgAdmins) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM admins`)
}
