package rating

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const defaultRowSelector = "table tbody tr"

// HTMLSource scrapes a rankings page. Each row is expected to hold the rank,
// team name and rating in the configured columns.
type HTMLSource struct {
	URL          string
	Client       *http.Client
	RowSelector  string
	RankColumn   int
	TeamColumn   int
	RatingColumn int
	now          func() time.Time
}

func NewHTMLSource(url string) *HTMLSource {
	return &HTMLSource{
		URL:          url,
		Client:       &http.Client{Timeout: 15 * time.Second},
		RowSelector:  defaultRowSelector,
		RankColumn:   0,
		TeamColumn:   1,
		RatingColumn: 2,
		now:          time.Now,
	}
}

func (s *HTMLSource) Fetch(ctx context.Context) (*Reference, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build ratings request: %w", err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ratings page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch ratings page: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse ratings page: %w", err)
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	ref := NewReference(now())

	selector := s.RowSelector
	if selector == "" {
		selector = defaultRowSelector
	}
	doc.Find(selector).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		name := strings.TrimSpace(cells.Eq(s.TeamColumn).Text())
		if name == "" {
			return
		}

		var e Entry
		if v, err := strconv.ParseFloat(cleanNumber(cells.Eq(s.RatingColumn).Text()), 64); err == nil {
			e.Rating = &v
		}
		if v, err := strconv.Atoi(cleanNumber(cells.Eq(s.RankColumn).Text())); err == nil {
			e.Rank = &v
		}
		ref.Add(name, e)
	})

	return ref, nil
}

func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "#")
	return strings.ReplaceAll(s, ",", "")
}
