package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/competition-manager/models"
	"github.com/Dosada05/competition-manager/rating"
	"github.com/Dosada05/competition-manager/storylines"
	"golang.org/x/sync/errgroup"
)

type ResultsSummary struct {
	CompetitionID      string                     `json:"competition_id"`
	Findings           storylines.Findings        `json:"findings"`
	Narrative          string                     `json:"narrative"`
	Ratings            map[string]rating.Snapshot `json:"ratings"`
	TeamNames          map[string]string          `json:"team_names"`
	ReferenceFetchedAt *time.Time                 `json:"reference_fetched_at,omitempty"`
}

// ResultsSummary projects rating changes and builds storylines. A missing rating
// table only removes rating-based findings.
func (s *competitionService) ResultsSummary(ctx context.Context, competitionID string) (*ResultsSummary, error) {
	c, err := s.Get(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	teamIDs := competitionTeamIDs(c)

	var (
		teams []models.Team
		ref   *rating.Reference
	)
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if s.teamRepo == nil {
			return nil
		}
		loaded, err := s.teamRepo.ListByIDs(gCtx, teamIDs)
		if err != nil {
			return fmt.Errorf("failed to load teams for competition %s: %w", competitionID, err)
		}
		teams = loaded
		return nil
	})

	g.Go(func() error {
		if s.ratings == nil {
			return nil
		}
		loaded, err := s.ratings.Get(gCtx)
		if err != nil {
			s.logger.Warn("rating reference unavailable, continuing without ratings",
				slog.String("competition_id", competitionID),
				slog.Any("error", err),
			)
			return nil
		}
		ref = loaded
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make(map[string]string, len(teamIDs))
	for _, t := range teams {
		names[t.ID] = t.Name
	}

	pre := map[string]float64{}
	if ref != nil {
		pre = ref.Ratings(names)
	}

	report := storylines.Generate(storylines.Input{
		Competition: c,
		TeamNames:   names,
		PreRatings:  pre,
	})

	summary := &ResultsSummary{
		CompetitionID: c.ID,
		Findings:      report.Findings,
		Narrative:     report.Narrative,
		Ratings:       s.model.ProjectAll(teamIDs, pre, c.AllMatchups()),
		TeamNames:     names,
	}
	if ref != nil && !ref.FetchedAt.IsZero() {
		fetchedAt := ref.FetchedAt
		summary.ReferenceFetchedAt = &fetchedAt
	}
	return summary, nil
}
