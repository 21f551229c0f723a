package commands

import (
	"testing"

	"github.com/spherical/pdf-parser/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestExtractOptions(t *testing.T) {
	reset := func() {
		extractOCR, extractText, extractImages, extractTables, extractStructured = false, false, false, false, false
		extractAll, extractKeepTemp = false, false
	}

	tests := []struct {
		name string
		set  func()
		want domain.Options
	}{
		{
			name: "no flags runs everything",
			set:  func() {},
			want: domain.AllOptions(),
		},
		{
			name: "subset",
			set:  func() { extractText, extractTables = true, true },
			want: domain.Options{Text: true, Tables: true},
		},
		{
			name: "all keeps temp flag",
			set:  func() { extractAll, extractKeepTemp, extractText = true, true, true },
			want: domain.Options{OCR: true, Text: true, Images: true, Tables: true, Structured: true, KeepTemp: true},
		},
		{
			name: "keep temp alone still runs everything",
			set:  func() { extractKeepTemp = true },
			want: domain.Options{OCR: true, Text: true, Images: true, Tables: true, Structured: true, KeepTemp: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reset()
			defer reset()
			tt.set()
			assert.Equal(t, tt.want, extractOptions())
		})
	}
}

func TestElementCounts(t *testing.T) {
	rows := elementCounts([]domain.Element{
		{Type: domain.ElementTitle},
		{Type: domain.ElementNarrativeText},
		{Type: domain.ElementNarrativeText},
		{Type: domain.ElementTable},
	})

	assert.Equal(t, [][]string{
		{string(domain.ElementNarrativeText), "2"},
		{string(domain.ElementTable), "1"},
		{string(domain.ElementTitle), "1"},
	}, rows)
}
