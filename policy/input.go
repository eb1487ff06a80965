package policy

import (
	"github.com/xiaot623/ledcontent/internal/domain"
)

// DocumentInput is the policy input for a document save.
type DocumentInput struct {
	Title    string          `json:"title"`
	Checksum string          `json:"checksum"`
	Sessions []SessionInput  `json:"sessions"`
	Registry map[string]bool `json:"registry"`
}

type SessionInput struct {
	Order     int             `json:"session_order"`
	Delay     int             `json:"delay"`
	Text      *TextInput      `json:"text,omitempty"`
	Lines     []LineInput     `json:"lines"`
	Animation *AnimationInput `json:"animation,omitempty"`
}

type TextInput struct {
	StartIndex int    `json:"start_index"`
	Color      string `json:"color"`
}

type LineInput struct {
	StartIndex int    `json:"start_index"`
	Color      string `json:"color"`
}

type AnimationInput struct {
	LoopCount         int      `json:"loop_count"`
	TimeBetweenImages int      `json:"time_between_images"`
	Images            []string `json:"images"`
}

// ImageInput is the policy input for an image registry write.
type ImageInput struct {
	Image struct {
		Name string `json:"name"`
	} `json:"image"`
}

// NewDocumentInput builds the policy input for doc against the registered image names.
func NewDocumentInput(doc *domain.Document, registered []string) DocumentInput {
	in := DocumentInput{
		Title:    doc.Title,
		Checksum: doc.Checksum,
		Sessions: make([]SessionInput, 0, len(doc.Sessions)),
		Registry: make(map[string]bool, len(registered)),
	}
	for _, name := range registered {
		in.Registry[name] = true
	}
	for _, s := range doc.Sessions {
		si := SessionInput{
			Order: s.Order,
			Delay: s.Delay,
			Lines: make([]LineInput, 0, len(s.Lines)),
		}
		if s.Text != nil {
			si.Text = &TextInput{StartIndex: s.Text.StartIndex, Color: s.Text.Color}
		}
		for _, l := range s.Lines {
			si.Lines = append(si.Lines, LineInput{StartIndex: l.StartIndex, Color: l.Color})
		}
		if s.Animation != nil {
			si.Animation = &AnimationInput{
				LoopCount:         s.Animation.LoopCount,
				TimeBetweenImages: s.Animation.TimeBetweenImages,
				Images:            append([]string{}, s.Animation.Images...),
			}
		}
		in.Sessions = append(in.Sessions, si)
	}
	return in
}

// NewImageInput builds the policy input for an image registry write.
func NewImageInput(name string) ImageInput {
	var in ImageInput
	in.Image.Name = name
	return in
}
