// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// Post is a markdown article owned by exactly one user.
//
// AuthorID is set once at creation and never changes. Content is the raw
// markdown the author typed; it is only turned into HTML (and sanitized) at
// render time, see package markdown.
type Post struct {
	ID        int64     `json:"id"        db:"id"`
	AuthorID  int64     `json:"authorId"  db:"author"`
	Title     string    `json:"title"     db:"title"`
	Content   string    `json:"content"   db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"date"`
}

// PostSummary is the row shape of the index page listing.
type PostSummary struct {
	ID        int64     `json:"id"        db:"id"`
	Title     string    `json:"title"     db:"title"`
	CreatedAt time.Time `json:"createdAt" db:"date"`
}
