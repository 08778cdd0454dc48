package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Dosada05/competition-manager/brackets"
	"github.com/Dosada05/competition-manager/models"
	"github.com/Dosada05/competition-manager/repositories"
	"github.com/Dosada05/competition-manager/standings"
)

// handleRepositoryError translates repository errors into service errors.
func handleRepositoryError(err error, competitionID string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrCompetitionNotFound):
		return fmt.Errorf("%w: %s", ErrCompetitionNotFound, competitionID)
	case errors.Is(err, repositories.ErrCompetitionConflict):
		return fmt.Errorf("%w: %s", ErrCompetitionConflict, competitionID)
	}
	return err
}

// validationError wraps model validation errors in ErrValidationFailed.
func validationError(err error) error {
	if errors.Is(err, models.ErrTeamInMultiplePools) {
		return fmt.Errorf("%w: %w", ErrValidationFailed, ErrTeamInMultiplePools)
	}
	return fmt.Errorf("%w: %w", ErrValidationFailed, err)
}

// seededOrder puts seeded teams first by ascending seed, then unseeded teams in roster order.
func seededOrder(teamIDs []string, seeds map[string]int) []string {
	ordered := make([]string, len(teamIDs))
	copy(ordered, teamIDs)
	sort.SliceStable(ordered, func(i, j int) bool {
		si, iok := seeds[ordered[i]]
		sj, jok := seeds[ordered[j]]
		switch {
		case iok && jok:
			return si < sj
		case iok != jok:
			return iok
		}
		return false
	})
	return ordered
}

// interleaveRankings lists every pool winner, then every runner-up, and so on.
func interleaveRankings(rankings [][]string) []string {
	var out []string
	for rank := 0; ; rank++ {
		added := false
		for _, ranking := range rankings {
			if rank < len(ranking) {
				out = append(out, ranking[rank])
				added = true
			}
		}
		if !added {
			return out
		}
	}
}

// labelledRankings keys the current pool rankings by pool label (A, B, ...).
func labelledRankings(c *models.Competition) map[string][]string {
	byPool := standings.PoolRankings(c)
	out := make(map[string][]string, len(c.Pools))
	for i, p := range c.Pools {
		out[brackets.PoolLabel(i)] = byPool[p.ID]
	}
	return out
}

// downstreamStarted reports whether a game the winner of m would reach already has a
// result or is being played. Single-feeder byes pass the winner on, so the walk
// continues through them the same way AdvanceWinner does.
func downstreamStarted(matchups []models.Matchup, m *models.Matchup) bool {
	if m.Kind != models.MatchupKindBracket {
		return false
	}
	for cur := m; cur != nil && cur.Round > 1; {
		next := nextGame(matchups, cur)
		if next == nil {
			return false
		}
		if next.Status == models.MatchupCompleted || next.Status == models.MatchupInProgress {
			return true
		}
		if next.Status != models.MatchupBye || (next.HomeSeed == nil) == (next.AwaySeed == nil) {
			return false
		}
		cur = next
	}
	return false
}

// nextGame returns the game waiting on the winner of m, if any.
func nextGame(matchups []models.Matchup, m *models.Matchup) *models.Matchup {
	label := models.WinnerOf(m.Position)
	for i := range matchups {
		next := &matchups[i]
		if next.Round != m.Round-1 {
			continue
		}
		if next.HomeSeed.Equal(label) || next.AwaySeed.Equal(label) {
			return next
		}
	}
	return nil
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
