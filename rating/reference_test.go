package rating

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatRef(v float64) *float64 { return &v }
func intRef(v int) *int { return &v }

func TestReferenceLookup(t *testing.T) {
	ref := NewReference(time.Now())
	ref.Add("Oregon", Entry{Rating: floatRef(2100), Rank: intRef(1)})
	ref.Add("North Carolina-Wilmington", Entry{Rating: floatRef(1850)})
	ref.Add("Carleton College", Entry{Rank: intRef(4)})
	ref.Add("Ghost Team", Entry{})

	tests := []struct {
		name  string
		query string
		found bool
	}{
		{"exact", "Oregon", true},
		{"case and spacing", "  OREGON ", true},
		{"university prefix", "University of Oregon", true},
		{"hyphen as space", "North Carolina Wilmington", true},
		{"rank only", "carleton college", true},
		{"hyphen in query", "carleton-college", true},
		{"entry without data", "Ghost Team", false},
		{"missing", "Nowhere State", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ref.Lookup(tt.query)
			assert.Equal(t, tt.found, ok)
		})
	}
}

func TestReferenceLookup_SpaceToHyphen(t *testing.T) {
	ref := NewReference(time.Now())
	ref.Add("Cal-Poly", Entry{Rating: floatRef(1700)})

	e, ok := ref.Lookup("cal poly")
	require.True(t, ok, "hyphen in the table, space in the query")
	assert.Equal(t, 1700.0, *e.Rating)

	ref.Add("Texas A M", Entry{Rating: floatRef(1500)})
	_, ok = ref.Lookup("Texas-A-M")
	assert.True(t, ok)
}

func TestReferenceRatings(t *testing.T) {
	ref := NewReference(time.Now())
	ref.Add("Oregon", Entry{Rating: floatRef(2100)})
	ref.Add("Carleton", Entry{Rank: intRef(4)})

	ratings := ref.Ratings(map[string]string{"t1": "Oregon", "t2": "Carleton", "t3": "Unknown"})
	assert.Equal(t, map[string]float64{"t1": 2100}, ratings)
}

func TestNilReference(t *testing.T) {
	var ref *Reference
	_, ok := ref.Lookup("Oregon")
	assert.False(t, ok)
	assert.Zero(t, ref.Len())
}

const rankingsPage = `<html><body>
<table>
  <thead><tr><th>Rank</th><th>Team</th><th>Rating</th></tr></thead>
  <tbody>
    <tr><td>#1</td><td> Oregon </td><td>2,104.5</td></tr>
    <tr><td>2</td><td>Brown</td><td>2050</td></tr>
    <tr><td>3</td><td>Carleton</td><td>n/a</td></tr>
    <tr><td></td><td></td><td>1000</td></tr>
  </tbody>
</table>
</body></html>`

func TestHTMLSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(rankingsPage))
	}))
	defer srv.Close()

	fetchedAt := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	src := NewHTMLSource(srv.URL)
	src.now = func() time.Time { return fetchedAt }

	ref, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, ref.Len())
	assert.Equal(t, fetchedAt, ref.FetchedAt)

	oregon, ok := ref.Lookup("University of Oregon")
	require.True(t, ok)
	assert.Equal(t, 2104.5, *oregon.Rating)
	assert.Equal(t, 1, *oregon.Rank)

	carleton, ok := ref.Lookup("Carleton")
	require.True(t, ok)
	assert.Nil(t, carleton.Rating)
	assert.Equal(t, 3, *carleton.Rank)
}

func TestHTMLSourceFetch_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTMLSource(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
