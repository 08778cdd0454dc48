// Package standings folds completed matchups into win/loss records and rankings.
// Every function rebuilds from the matchup list; nothing is updated incrementally.
package standings

import (
	"sort"

	"github.com/Dosada05/competition-manager/models"
)

// Compute returns a fresh record for every team in teamIDs. Matchups that are not
// completed are ignored, and a side whose team is not in teamIDs is skipped.
func Compute(teamIDs []string, matchups []models.Matchup) map[string]models.StandingRecord {
	records := make(map[string]*models.StandingRecord, len(teamIDs))
	for _, id := range teamIDs {
		records[id] = &models.StandingRecord{}
	}

	for i := range matchups {
		m := &matchups[i]
		if !m.Completed() || !m.HasBothTeams() {
			continue
		}
		home, away := *m.HomeTeamID, *m.AwayTeamID
		homeScore, awayScore := *m.HomeScore, *m.AwayScore

		if r, ok := records[home]; ok {
			applyResult(r, homeScore, awayScore)
		}
		if r, ok := records[away]; ok {
			applyResult(r, awayScore, homeScore)
		}
	}

	out := make(map[string]models.StandingRecord, len(records))
	for id, r := range records {
		r.PointDiff = r.PointsFor - r.PointsAgainst
		out[id] = *r
	}
	return out
}

func applyResult(r *models.StandingRecord, own, opp int) {
	r.PointsFor += own
	r.PointsAgainst += opp
	switch {
	case own > opp:
		r.Wins++
	case own < opp:
		r.Losses++
	default:
		r.Ties++
	}
}

// Rank orders teams by wins, then point differential, both descending.
// Teams still level keep their order in teamIDs.
func Rank(teamIDs []string, records map[string]models.StandingRecord) []string {
	ranked := make([]string, len(teamIDs))
	copy(ranked, teamIDs)
	sort.SliceStable(ranked, func(i, j int) bool {
		return less(records[ranked[i]], records[ranked[j]])
	})
	return ranked
}

func less(a, b models.StandingRecord) bool {
	if a.Wins != b.Wins {
		return a.Wins > b.Wins
	}
	return a.PointDiff > b.PointDiff
}

// Blend tallies regular (pool) and tournament (bracket) results together. The split
// counts are for display; ranking uses the combined totals.
func Blend(teamIDs []string, regular, tournament []models.Matchup) map[string]models.CombinedRecord {
	regularRecords := Compute(teamIDs, regular)
	tournamentRecords := Compute(teamIDs, tournament)

	out := make(map[string]models.CombinedRecord, len(teamIDs))
	for _, id := range teamIDs {
		reg, tour := regularRecords[id], tournamentRecords[id]
		total := models.StandingRecord{
			Wins:          reg.Wins + tour.Wins,
			Losses:        reg.Losses + tour.Losses,
			Ties:          reg.Ties + tour.Ties,
			PointsFor:     reg.PointsFor + tour.PointsFor,
			PointsAgainst: reg.PointsAgainst + tour.PointsAgainst,
		}
		total.PointDiff = total.PointsFor - total.PointsAgainst
		out[id] = models.CombinedRecord{
			StandingRecord:   total,
			RegularWins:      reg.Wins,
			RegularLosses:    reg.Losses,
			TournamentWins:   tour.Wins,
			TournamentLosses: tour.Losses,
		}
	}
	return out
}

// RankCombined applies the pool ranking rule to blended records.
func RankCombined(teamIDs []string, records map[string]models.CombinedRecord) []string {
	flat := make(map[string]models.StandingRecord, len(records))
	for id, r := range records {
		flat[id] = r.StandingRecord
	}
	return Rank(teamIDs, flat)
}

// ComputePools rebuilds every pool's table of a competition.
func ComputePools(c *models.Competition) map[string]map[string]models.StandingRecord {
	out := make(map[string]map[string]models.StandingRecord, len(c.Pools))
	for _, p := range c.Pools {
		out[p.ID] = Compute(p.TeamIDs, c.PoolMatchupsFor(p.ID))
	}
	return out
}

// PoolRankings ranks each pool of a competition from its stored standings.
func PoolRankings(c *models.Competition) map[string][]string {
	out := make(map[string][]string, len(c.Pools))
	for _, p := range c.Pools {
		records, ok := c.PoolStandings[p.ID]
		if !ok {
			records = Compute(p.TeamIDs, c.PoolMatchupsFor(p.ID))
		}
		out[p.ID] = Rank(p.TeamIDs, records)
	}
	return out
}
