package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/ledcontent/internal/domain"
)

func TestProjectNilDocument(t *testing.T) {
	data, err := json.Marshal(Project(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"sessions":[],"checksum":""}`, string(data))
}

func TestProjectDocument(t *testing.T) {
	doc := &domain.Document{
		Checksum: "abc123",
		Sessions: []domain.Session{
			{Order: 2, Delay: 400, Animation: &domain.SessionAnimation{
				LoopCount: 2, TimeBetweenImages: 90, Images: []string{"logo", "sun"},
			}},
			{Order: 1, Delay: 250,
				Text:  &domain.SessionText{StartIndex: 1, Content: "Hi", Color: "#00ff00"},
				Lines: []domain.SessionLine{{StartIndex: 0, Color: "#ff0000"}},
			},
		},
	}

	data, err := json.Marshal(Project(doc))
	require.NoError(t, err)

	want := `{
		"sessions": [
			{
				"text": {"startIndex": 1, "content": "Hi", "color": [0, 255, 0]},
				"lines": [{"startIndex": 0, "color": [255, 0, 0]}],
				"animation": null,
				"delay": 250
			},
			{
				"text": null,
				"lines": [],
				"animation": {"loopCount": 2, "timeBetweenImages": 90, "imageCount": 2, "images": ["logo", "sun"]},
				"delay": 400
			}
		],
		"checksum": "abc123"
	}`
	assert.JSONEq(t, want, string(data))
}

func TestProjectBadColorFallsBack(t *testing.T) {
	doc := &domain.Document{Sessions: []domain.Session{
		{Order: 1, Text: &domain.SessionText{Color: "not-a-color"}},
	}}

	p := Project(doc)
	require.Len(t, p.Sessions, 1)
	assert.Equal(t, [3]int{0, 255, 0}, p.Sessions[0].Text.Color)
}

func TestProjectSortsLinesLikeDefinition(t *testing.T) {
	doc := &domain.Document{Sessions: []domain.Session{
		{Order: 1, Delay: 100, Lines: []domain.SessionLine{
			{StartIndex: 5, Color: "#0000ff"},
			{StartIndex: 0, Color: "#ff0000"},
			{StartIndex: 2, Color: "#00ff00"},
		}},
	}}

	p := Project(doc)
	require.Len(t, p.Sessions, 1)
	indexes := make([]int, 0, 3)
	for _, l := range p.Sessions[0].Lines {
		indexes = append(indexes, l.StartIndex)
	}
	assert.Equal(t, []int{0, 2, 5}, indexes)
	assert.Equal(t, 5, doc.Sessions[0].Lines[0].StartIndex)
	assert.Equal(t, "Line=0,255,0,0\nLine=2,0,255,0\nLine=5,0,0,255\nDelay=100", Definition(doc))
}
