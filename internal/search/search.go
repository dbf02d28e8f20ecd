package search

import "strings"

// MinQueryLength is the shortest query that produces results.
const MinQueryLength = 2

type Entry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Keywords    string `json:"keywords,omitempty"`
}

func (e Entry) matches(query string) bool {
	return strings.Contains(strings.ToLower(e.Title), query) ||
		strings.Contains(strings.ToLower(e.Description), query) ||
		strings.Contains(strings.ToLower(e.Keywords), query)
}

// Index is a fixed list of pages searched linearly.
type Index struct {
	entries []Entry
}

func NewIndex(entries []Entry) *Index {
	return &Index{entries: append([]Entry(nil), entries...)}
}

func DefaultIndex() *Index {
	return NewIndex([]Entry{
		{
			Title:       "About Us",
			Description: "Learn about our mission, vision, and core values",
			URL:         "about.html",
			Keywords:    "about mission vision values team",
		},
		{
			Title:       "Tree Planting Projects",
			Description: "Kwale Green Corridor and reforestation initiatives",
			URL:         "projects.html#reforestation",
			Keywords:    "tree planting reforestation green corridor",
		},
		{
			Title:       "Waste Management",
			Description: "Zero waste communities and recycling programs",
			URL:         "projects.html#waste",
			Keywords:    "waste management recycling zero waste",
		},
		{
			Title:       "Environmental Education",
			Description: "Green Schools Program and youth education",
			URL:         "projects.html#education",
			Keywords:    "education schools students training",
		},
		{
			Title:       "Contact Information",
			Description: "Get in touch with our team",
			URL:         "contact.html",
			Keywords:    "contact email phone address",
		},
	})
}

// Search returns entries whose title, description or keywords contain the
// query, case-insensitively, in index order. Queries shorter than
// MinQueryLength after trimming return nil.
func (idx *Index) Search(query string) []Entry {
	q := NormalizeQuery(query)
	if len([]rune(q)) < MinQueryLength {
		return nil
	}

	results := []Entry{}
	for _, e := range idx.entries {
		if e.matches(q) {
			results = append(results, e)
		}
	}
	return results
}

func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func (idx *Index) Entries() []Entry {
	return append([]Entry(nil), idx.entries...)
}
