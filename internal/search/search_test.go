package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func titles(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Title)
	}
	return out
}

func TestSearch(t *testing.T) {
	idx := DefaultIndex()

	tests := []struct {
		name     string
		query    string
		expected []string
	}{
		{name: "single character", query: "t", expected: nil},
		{name: "blank", query: "   ", expected: nil},
		{name: "padded single character", query: "  e ", expected: nil},
		{name: "title match", query: "tree", expected: []string{"Tree Planting Projects"}},
		{name: "case insensitive", query: "  WASTE ", expected: []string{"Waste Management"}},
		{name: "keyword match", query: "students", expected: []string{"Environmental Education"}},
		{name: "description match", query: "in touch", expected: []string{"Contact Information"}},
		{name: "several matches in order", query: "team", expected: []string{"About Us", "Contact Information"}},
		{name: "green matches two", query: "green", expected: []string{"Tree Planting Projects", "Environmental Education"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, titles(idx.Search(tt.query)))
		})
	}
}

func TestSearch_NoResultsIsEmptyNotNil(t *testing.T) {
	results := DefaultIndex().Search("volcano")
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestNewIndex_CopiesEntries(t *testing.T) {
	entries := []Entry{{Title: "Donate", Description: "Support us", URL: "donate.html"}}
	idx := NewIndex(entries)
	entries[0].Title = "changed"

	assert.Equal(t, "Donate", idx.Entries()[0].Title)
	assert.Len(t, idx.Search("donate"), 1)
}
