package render

import (
	"github.com/xiaot623/ledcontent/internal/domain"
)

// Projection is the JSON view of a document served to programmatic consumers.
type Projection struct {
	Sessions []SessionView `json:"sessions"`
	Checksum string        `json:"checksum"`
}

// SessionView is one session in the projection. Text and Animation encode as
// null when absent.
type SessionView struct {
	Text      *TextView      `json:"text"`
	Lines     []LineView     `json:"lines"`
	Animation *AnimationView `json:"animation"`
	Delay     int            `json:"delay"`
}

type TextView struct {
	StartIndex int    `json:"startIndex"`
	Content    string `json:"content"`
	Color      [3]int `json:"color"`
}

type LineView struct {
	StartIndex int    `json:"startIndex"`
	Color      [3]int `json:"color"`
}

type AnimationView struct {
	LoopCount         int      `json:"loopCount"`
	TimeBetweenImages int      `json:"timeBetweenImages"`
	ImageCount        int      `json:"imageCount"`
	Images            []string `json:"images"`
}

// Project builds the JSON view of doc. A nil document yields an empty
// projection with no sessions and an empty checksum.
func Project(doc *domain.Document) Projection {
	if doc == nil {
		return Projection{Sessions: []SessionView{}}
	}

	sessions := orderedSessions(doc.Sessions)
	views := make([]SessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, projectSession(s))
	}
	return Projection{Sessions: views, Checksum: doc.Checksum}
}

func projectSession(s domain.Session) SessionView {
	v := SessionView{
		Lines: make([]LineView, 0, len(s.Lines)),
		Delay: s.Delay,
	}
	if s.Text != nil {
		v.Text = &TextView{
			StartIndex: s.Text.StartIndex,
			Content:    s.Text.Content,
			Color:      domain.DecodeColor(s.Text.Color).Triple(),
		}
	}
	for _, l := range sortedLines(s.Lines) {
		v.Lines = append(v.Lines, LineView{
			StartIndex: l.StartIndex,
			Color:      domain.DecodeColor(l.Color).Triple(),
		})
	}
	if s.Animation != nil {
		images := append([]string{}, s.Animation.Images...)
		v.Animation = &AnimationView{
			LoopCount:         s.Animation.LoopCount,
			TimeBetweenImages: s.Animation.TimeBetweenImages,
			ImageCount:        len(images),
			Images:            images,
		}
	}
	return v
}
