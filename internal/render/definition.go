// Package render turns content documents into the representations served to
// displays: the line-oriented definition format and a JSON projection.
package render

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xiaot623/ledcontent/internal/domain"
)

// Directive keys of the definition format.
const (
	keyFrameOn   = "Frame1"
	keyFrameOff  = "Frame0"
	keyStart     = "Start"
	keyEnd       = "End"
	keyLine      = "Line"
	keyText      = "Text"
	keyColor     = "Color"
	keyAnimation = "Animation"
	keyDelay     = "Delay"
	separator    = "Next"
)

// textCarry is threaded through the sessions in order. The display keeps
// showing the last text it received, so an animation-only session emits no
// Text= line once some text has gone out.
type textCarry struct {
	last *domain.SessionText
}

// Definition compiles doc into definition-format text. Lines are joined with
// "\n" and there is no trailing newline. A nil document compiles to "".
func Definition(doc *domain.Document) string {
	if doc == nil {
		return ""
	}

	var lines []string
	if doc.StartTime != nil {
		lines = append(lines, directive(keyFrameOn, doc.StartTime.Format(domain.ClockLayout)))
	}
	if doc.EndTime != nil {
		lines = append(lines, directive(keyFrameOff, doc.EndTime.Format(domain.ClockLayout)))
	}

	sessions := orderedSessions(doc.Sessions)
	var carry textCarry
	for i := range sessions {
		var out []string
		out, carry = renderSession(&sessions[i], carry)
		lines = append(lines, out...)
		if i < len(sessions)-1 {
			lines = append(lines, separator)
		}
	}

	return strings.Join(lines, "\n")
}

func renderSession(s *domain.Session, carry textCarry) ([]string, textCarry) {
	var out []string

	if v, ok := schedule(s.StartDate, s.StartTime); ok {
		out = append(out, directive(keyStart, v))
	}
	if v, ok := schedule(s.EndDate, s.EndTime); ok {
		out = append(out, directive(keyEnd, v))
	}

	for _, l := range sortedLines(s.Lines) {
		c := domain.DecodeColor(l.Color)
		out = append(out, directive(keyLine, fmt.Sprintf("%d,%d,%d,%d", l.StartIndex, c.R, c.G, c.B)))
	}

	hasText := s.Text != nil
	hasAnimation := s.Animation != nil

	switch {
	case hasText:
		c := domain.DecodeColor(s.Text.Color)
		out = append(out,
			directive(keyText, strconv.Itoa(s.Text.StartIndex)+","+s.Text.Content),
			directive(keyColor, fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)),
		)
		carry.last = s.Text
	case hasAnimation && carry.last == nil:
		out = append(out, directive(keyText, ""))
	}

	if hasAnimation {
		out = append(out, directive(keyAnimation, animationValue(s.Animation)))
	}

	out = append(out, directive(keyDelay, strconv.Itoa(s.Delay)))
	return out, carry
}

func animationValue(a *domain.SessionAnimation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d,%d,%d", a.LoopCount, a.TimeBetweenImages, len(a.Images))
	for _, name := range a.Images {
		b.WriteByte(',')
		b.WriteString(name)
	}
	return b.String()
}

// schedule joins whichever of date and time are set.
func schedule(date, clock *time.Time) (string, bool) {
	var parts []string
	if date != nil {
		parts = append(parts, date.Format(domain.DateLayout))
	}
	if clock != nil {
		parts = append(parts, clock.Format(domain.ClockLayout))
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

func orderedSessions(sessions []domain.Session) []domain.Session {
	ordered := slices.Clone(sessions)
	slices.SortStableFunc(ordered, func(a, b domain.Session) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return ordered
}

func directive(key, value string) string {
	return key + "=" + value
}

// sortedLines returns a copy of lines ordered by start index.
func sortedLines(lines []domain.SessionLine) []domain.SessionLine {
	out := slices.Clone(lines)
	slices.SortStableFunc(out, func(a, b domain.SessionLine) int {
		return cmp.Compare(a.StartIndex, b.StartIndex)
	})
	return out
}
