package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/competition-manager/models"
	"github.com/Dosada05/competition-manager/standings"
)

type PoolStandingsView struct {
	PoolID   string                           `json:"pool_id"`
	PoolName string                           `json:"pool_name"`
	Ranking  []string                         `json:"ranking"`
	Records  map[string]models.StandingRecord `json:"records"`
}

type CombinedStanding struct {
	TeamID string                `json:"team_id"`
	Record models.CombinedRecord `json:"record"`
}

type StandingsView struct {
	CompetitionID string              `json:"competition_id"`
	Pools         []PoolStandingsView `json:"pools"`
	Overall       []CombinedStanding  `json:"overall"`
}

type SeasonStandingsView struct {
	SeasonID       string             `json:"season_id"`
	CompetitionIDs []string           `json:"competition_ids"`
	Standings      []CombinedStanding `json:"standings"`
}

func (s *competitionService) GetStandings(ctx context.Context, competitionID string) (*StandingsView, error) {
	c, err := s.Get(ctx, competitionID)
	if err != nil {
		return nil, err
	}

	view := &StandingsView{CompetitionID: c.ID, Pools: make([]PoolStandingsView, 0, len(c.Pools))}
	for _, p := range c.Pools {
		records := standings.Compute(p.TeamIDs, c.PoolMatchupsFor(p.ID))
		view.Pools = append(view.Pools, PoolStandingsView{
			PoolID:   p.ID,
			PoolName: p.Name,
			Ranking:  standings.Rank(p.TeamIDs, records),
			Records:  records,
		})
	}

	teams := competitionTeamIDs(c)
	view.Overall = combinedTable(teams, standings.Blend(teams, c.PoolMatchups, c.BracketMatchups))
	return view, nil
}

// SeasonStandings blends every competition linked to the season: pool games count
// as regular play, bracket games as tournament play.
func (s *competitionService) SeasonStandings(ctx context.Context, seasonID string) (*SeasonStandingsView, error) {
	competitions, err := s.competitionRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions for season %s: %w", seasonID, err)
	}
	if len(competitions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSeasonNotFound, seasonID)
	}

	view := &SeasonStandingsView{SeasonID: seasonID, CompetitionIDs: make([]string, 0, len(competitions))}
	var teams []string
	seen := make(map[string]bool)
	var regular, tournament []models.Matchup
	// старые соревнования первыми, чтобы порядок команд был стабильным
	for i := len(competitions) - 1; i >= 0; i-- {
		c := &competitions[i]
		view.CompetitionIDs = append(view.CompetitionIDs, c.ID)
		for _, id := range competitionTeamIDs(c) {
			if !seen[id] {
				seen[id] = true
				teams = append(teams, id)
			}
		}
		regular = append(regular, c.PoolMatchups...)
		tournament = append(tournament, c.BracketMatchups...)
	}

	view.Standings = combinedTable(teams, standings.Blend(teams, regular, tournament))
	return view, nil
}

func combinedTable(teams []string, records map[string]models.CombinedRecord) []CombinedStanding {
	ranked := standings.RankCombined(teams, records)
	out := make([]CombinedStanding, 0, len(ranked))
	for _, id := range ranked {
		out = append(out, CombinedStanding{TeamID: id, Record: records[id]})
	}
	return out
}

// competitionTeamIDs is the roster plus any pool team missing from it.
func competitionTeamIDs(c *models.Competition) []string {
	seen := make(map[string]bool, len(c.TeamIDs))
	ids := make([]string, 0, len(c.TeamIDs))
	for _, id := range c.TeamIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, p := range c.Pools {
		for _, id := range p.TeamIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}
