package models

import "time"

const (
	RoleSuperAdmin = "superadmin"
	RoleEditor     = "editor"
)

type News struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	ImageURL    string    `db:"image_url" json:"imageUrl"`
	ImagePath   string    `db:"image_path" json:"imagePath"`
	SourceURL   string    `db:"source_url" json:"sourceUrl"`
	Category    string    `db:"category" json:"category"`
	IsPublished bool      `db:"is_published" json:"isPublished"`
	Priority    int       `db:"priority" json:"priority"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type Event struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	EventDate   *time.Time `db:"event_date" json:"eventDate"`
	EventTime   string     `db:"event_time" json:"eventTime"`
	EventURL    string     `db:"event_url" json:"eventUrl"`
	ImageURL    string     `db:"image_url" json:"imageUrl"`
	ImagePath   string     `db:"image_path" json:"imagePath"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

type Poster struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	ImageURL    string    `db:"image_url" json:"imageUrl"`
	ImagePath   string    `db:"image_path" json:"imagePath"`
	IsPublished bool      `db:"is_published" json:"isPublished"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type QRCode struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	ImageURL    string    `db:"image_url" json:"imageUrl"`
	ImagePath   string    `db:"image_path" json:"imagePath"`
	RedirectURL string    `db:"redirect_url" json:"redirectUrl"`
	IsActive    bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

type Admin struct {
	ID           string     `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"lastLoginAt"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}
