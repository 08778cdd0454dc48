package rating

import (
	"strings"
	"time"
)

// Entry is one row of the external reference. Either field may be missing.
type Entry struct {
	Rating *float64 `json:"rating,omitempty"`
	Rank   *int     `json:"rank,omitempty"`
}

// Known reports whether the entry carries anything at all.
func (e Entry) Known() bool {
	return e.Rating != nil || e.Rank != nil
}

// Reference is a point-in-time copy of the external rating table keyed by normalized team name.
type Reference struct {
	entries   map[string]Entry
	FetchedAt time.Time
}

func NewReference(fetchedAt time.Time) *Reference {
	return &Reference{entries: make(map[string]Entry), FetchedAt: fetchedAt}
}

// Add stores an entry under the normalized name. Entries with neither rating nor rank are dropped.
func (r *Reference) Add(name string, e Entry) {
	if !e.Known() {
		return
	}
	key := normalizeName(name)
	if key == "" {
		return
	}
	r.entries[key] = e
}

func (r *Reference) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Lookup tries the name as given, without a leading "university of", and with
// hyphens and spaces swapped.
func (r *Reference) Lookup(name string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	for _, key := range nameVariants(name) {
		if e, ok := r.entries[key]; ok {
			return e, true
		}
	}
	return Entry{}, false
}

// Ratings resolves pre-ratings for teams by name. Teams without a rating are absent from the result.
func (r *Reference) Ratings(teamNames map[string]string) map[string]float64 {
	out := make(map[string]float64, len(teamNames))
	for teamID, name := range teamNames {
		if e, ok := r.Lookup(name); ok && e.Rating != nil {
			out[teamID] = *e.Rating
		}
	}
	return out
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func nameVariants(name string) []string {
	base := normalizeName(name)
	if base == "" {
		return nil
	}

	candidates := []string{base}
	if stripped, ok := strings.CutPrefix(base, "university of "); ok {
		candidates = append(candidates, stripped)
	}

	variants := make([]string, 0, len(candidates)*3)
	seen := make(map[string]struct{})
	add := func(s string) {
		if _, ok := seen[s]; ok || s == "" {
			return
		}
		seen[s] = struct{}{}
		variants = append(variants, s)
	}
	for _, c := range candidates {
		add(c)
		add(normalizeName(strings.ReplaceAll(c, "-", " ")))
		add(strings.ReplaceAll(c, " ", "-"))
	}
	return variants
}
