package models

import "time"

// Blog represents a published article with HTML content and an optional
// header image. HeaderImage stores the media-root relative path of the
// file (e.g. "blog_headers/cover.png"); the absolute URL is resolved per
// request at serialization time.
type Blog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Content     string    `gorm:"type:text" json:"content"`
	HeaderImage string    `gorm:"size:512" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
