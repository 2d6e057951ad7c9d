package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_DedupesLists(t *testing.T) {
	m := &Metadata{
		Title:   " Title ",
		Summary: "Summary",
		Topics:  []string{"AI", "ai", "", "  VC  ", "AI"},
		Tags:    []string{"#AI", "#ai"},
		Guests:  []string{"A", "a", "B"},
	}
	m.Normalize()

	assert.Equal(t, "Title", m.Title)
	assert.Equal(t, []string{"AI", "VC"}, m.Topics)
	assert.Equal(t, []string{"#AI"}, m.Tags)
	assert.Equal(t, []string{"A", "B"}, m.Guests)
	assert.Equal(t, "youtube", m.SourceType)
}

func TestNormalize_DropsInvalidDate(t *testing.T) {
	m := &Metadata{Title: "t", Summary: "s", DatePublished: "sometime in March"}
	m.Normalize()
	assert.Empty(t, m.DatePublished)

	m = &Metadata{Title: "t", Summary: "s", DatePublished: "2024-03-15"}
	m.Normalize()
	assert.Equal(t, "2024-03-15", m.DatePublished)

	m = &Metadata{Title: "t", Summary: "s", DatePublished: "2024-03-15T10:30:00Z"}
	m.Normalize()
	assert.Equal(t, "2024-03-15T10:30:00Z", m.DatePublished)
}

func TestNormalize_OrdersChapters(t *testing.T) {
	m := &Metadata{
		Title:   "t",
		Summary: "s",
		Chapters: []Chapter{
			{Title: "Late", Timestamp: "01:00:00"},
			{Title: "Untimed"},
			{Title: "Early", Timestamp: "00:30"},
		},
	}
	m.Normalize()

	assert.Equal(t, "Early", m.Chapters[0].Title)
	assert.Equal(t, "Late", m.Chapters[1].Title)
	assert.Equal(t, "Untimed", m.Chapters[2].Title)
}

func TestValidate(t *testing.T) {
	m := &Metadata{Title: "t", Summary: "s"}
	assert.NoError(t, m.Validate())

	assert.Error(t, (&Metadata{Summary: "s"}).Validate())
	assert.Error(t, (&Metadata{Title: "t"}).Validate())
	assert.Error(t, (&Metadata{Title: "t", Summary: "s", Chapters: []Chapter{{Title: " "}}}).Validate())
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:15:30", 930, true},
		{"15:30", 930, true},
		{"1:02", 62, true},
		{"", 0, false},
		{"90", 0, false},
		{"a:b", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseTimestamp(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}
