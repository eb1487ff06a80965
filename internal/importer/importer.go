// Package importer reads content documents from TOML files.
package importer

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/xiaot623/ledcontent/internal/domain"
)

// File is the on-disk layout of a content document.
type File struct {
	ID        string        `toml:"id"`
	Title     string        `toml:"title"`
	CreatedBy string        `toml:"created_by"`
	StartTime string        `toml:"start_time"`
	EndTime   string        `toml:"end_time"`
	Checksum  string        `toml:"checksum"`
	Active    *bool         `toml:"active"`
	Test      bool          `toml:"test"`
	Sessions  []SessionFile `toml:"sessions"`
}

type SessionFile struct {
	Order     int            `toml:"order"`
	Delay     *int           `toml:"delay"`
	StartDate string         `toml:"start_date"`
	StartTime string         `toml:"start_time"`
	EndDate   string         `toml:"end_date"`
	EndTime   string         `toml:"end_time"`
	Text      *TextFile      `toml:"text"`
	Lines     []LineFile     `toml:"lines"`
	Animation *AnimationFile `toml:"animation"`
}

type TextFile struct {
	StartIndex int    `toml:"start_index"`
	Content    string `toml:"content"`
	Color      string `toml:"color"`
}

type LineFile struct {
	StartIndex int    `toml:"start_index"`
	Color      string `toml:"color"`
}

type AnimationFile struct {
	LoopCount         int      `toml:"loop_count"`
	TimeBetweenImages int      `toml:"time_between_images"`
	Images            []string `toml:"images"`
}

// LoadFile reads and converts a TOML content file.
func LoadFile(path string) (*domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Decode parses a TOML content document. Unknown keys are rejected so typos
// do not silently drop content.
func Decode(r io.Reader) (*domain.Document, error) {
	var f File
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse content file: %w", err)
	}
	return f.Document()
}

// Document converts the file into a domain document, applying editor defaults.
// Documents are active unless the file says otherwise.
func (f *File) Document() (*domain.Document, error) {
	doc := &domain.Document{
		DocumentID: f.ID,
		Title:      f.Title,
		CreatedBy:  f.CreatedBy,
		Checksum:   f.Checksum,
		IsActive:   f.Active == nil || *f.Active,
		IsTest:     f.Test,
		Sessions:   make([]domain.Session, 0, len(f.Sessions)),
	}

	var err error
	if doc.StartTime, err = optionalClock(f.StartTime); err != nil {
		return nil, fmt.Errorf("start_time: %w", err)
	}
	if doc.EndTime, err = optionalClock(f.EndTime); err != nil {
		return nil, fmt.Errorf("end_time: %w", err)
	}

	for i, sf := range f.Sessions {
		s, err := sf.session()
		if err != nil {
			return nil, fmt.Errorf("sessions[%d]: %w", i, err)
		}
		doc.Sessions = append(doc.Sessions, s)
	}
	return doc, nil
}

func (sf SessionFile) session() (domain.Session, error) {
	s := domain.Session{
		Order: sf.Order,
		Delay: domain.DefaultDelay,
		Lines: make([]domain.SessionLine, 0, len(sf.Lines)),
	}
	if sf.Delay != nil {
		s.Delay = *sf.Delay
	}

	var err error
	if s.StartDate, err = optionalDate(sf.StartDate); err != nil {
		return s, fmt.Errorf("start_date: %w", err)
	}
	if s.StartTime, err = optionalClock(sf.StartTime); err != nil {
		return s, fmt.Errorf("start_time: %w", err)
	}
	if s.EndDate, err = optionalDate(sf.EndDate); err != nil {
		return s, fmt.Errorf("end_date: %w", err)
	}
	if s.EndTime, err = optionalClock(sf.EndTime); err != nil {
		return s, fmt.Errorf("end_time: %w", err)
	}

	if sf.Text != nil {
		s.Text = &domain.SessionText{
			StartIndex: sf.Text.StartIndex,
			Content:    sf.Text.Content,
			Color:      withDefault(sf.Text.Color, domain.DefaultTextColor),
		}
	}
	for _, l := range sf.Lines {
		s.Lines = append(s.Lines, domain.SessionLine{
			StartIndex: l.StartIndex,
			Color:      withDefault(l.Color, domain.DefaultLineColor),
		})
	}
	if sf.Animation != nil {
		s.Animation = &domain.SessionAnimation{
			LoopCount:         sf.Animation.LoopCount,
			TimeBetweenImages: sf.Animation.TimeBetweenImages,
			Images:            append([]string{}, sf.Animation.Images...),
		}
	}
	return s, nil
}

func optionalClock(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := domain.ParseClock(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
