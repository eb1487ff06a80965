package domain

import (
	"strings"
	"time"
)

// Document is one schedulable piece of LED content with its sessions loaded.
type Document struct {
	DocumentID string     `json:"document_id"`
	Title      string     `json:"title"`
	CreatedAt  time.Time  `json:"created_at"`
	CreatedBy  string     `json:"created_by"`
	StartTime  *time.Time `json:"start_time,omitempty"` // Frame1, time of day only
	EndTime    *time.Time `json:"end_time,omitempty"`   // Frame0, time of day only
	Checksum   string     `json:"checksum"`
	IsActive   bool       `json:"is_active"`
	IsTest     bool       `json:"is_test"`
	Sessions   []Session  `json:"sessions"`
}

// DocumentSummary is the flat row used for listings and active-content selection.
type DocumentSummary struct {
	DocumentID   string    `json:"document_id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	CreatedBy    string    `json:"created_by"`
	Checksum     string    `json:"checksum"`
	IsActive     bool      `json:"is_active"`
	IsTest       bool      `json:"is_test"`
	SessionCount int       `json:"session_count"`
}

// Session is one ordered, timed segment of a document.
type Session struct {
	SessionID string     `json:"session_id"`
	Order     int        `json:"session_order"`
	Delay     int        `json:"delay"` // milliseconds
	StartDate *time.Time `json:"start_date,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Text      *SessionText      `json:"text,omitempty"`
	Lines     []SessionLine     `json:"lines"`
	Animation *SessionAnimation `json:"animation,omitempty"`
}

// SessionText is the static text shown during a session. Content is passed to
// the display verbatim.
type SessionText struct {
	StartIndex int    `json:"start_index"`
	Content    string `json:"content"`
	Color      string `json:"color"`
}

// SessionLine is a colored marker at a fixed index.
type SessionLine struct {
	StartIndex int    `json:"start_index"`
	Color      string `json:"color"`
}

// SessionAnimation plays registered images in order.
type SessionAnimation struct {
	LoopCount         int      `json:"loop_count"`
	TimeBetweenImages int      `json:"time_between_images"` // milliseconds
	Images            []string `json:"images"`
}

// JoinedImages is the comma-joined storage form of the image list.
func (a *SessionAnimation) JoinedImages() string {
	return strings.Join(a.Images, ",")
}

// SplitImages parses the comma-joined storage form.
func SplitImages(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

// Image is a master registry entry. Sessions reference images by name only.
type Image struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
