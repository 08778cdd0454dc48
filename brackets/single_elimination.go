package brackets

import (
	"context"
	"fmt"
	"math"

	"github.com/Dosada05/competition-manager/models"
)

type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// BracketSize returns the smallest power of two >= n and the number of rounds it takes.
func BracketSize(n int) (size, rounds int) {
	if n <= 1 {
		return 1, 0
	}
	rounds = int(math.Ceil(math.Log2(float64(n))))
	return 1 << uint(rounds), rounds
}

// GenerateBracket lays out the whole elimination tree up front. The first round is
// round number totalRounds and the final is round 1. Game positions run from 1 across
// the bracket, so every later game names its feeders as W{position}.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]models.Matchup, error) {
	teams := params.TeamIDs
	n := len(teams)
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrNotEnoughTeams, n)
	}

	bracketSize, totalRounds := BracketSize(n)
	matchups := make([]models.Matchup, 0, bracketSize-1)
	position := 0

	firstRoundGames := bracketSize / 2
	for i := 0; i < firstRoundGames; i++ {
		position++
		m := models.Matchup{
			ID:       newMatchupID(),
			Kind:     models.MatchupKindBracket,
			Round:    totalRounds,
			Position: position,
			Slot:     fmt.Sprintf("R%dM%d", totalRounds, i+1),
		}
		if h := 2 * i; h < n {
			m.HomeTeamID = teamRef(teams[h])
		}
		if a := 2*i + 1; a < n {
			m.AwayTeamID = teamRef(teams[a])
		}

		switch {
		case m.HomeTeamID != nil && m.AwayTeamID != nil:
			m.Status = models.MatchupScheduled
		case m.HomeTeamID != nil || m.AwayTeamID != nil:
			m.Status = models.MatchupBye
		default:
			m.Status = models.MatchupPending
		}
		matchups = append(matchups, m)
	}

	prevStart, prevCount := 1, firstRoundGames
	for round := totalRounds - 1; round >= 1; round-- {
		count := prevCount / 2
		for i := 0; i < count; i++ {
			position++
			matchups = append(matchups, models.Matchup{
				ID:       newMatchupID(),
				Kind:     models.MatchupKindBracket,
				Round:    round,
				Position: position,
				Slot:     fmt.Sprintf("R%dM%d", round, i+1),
				Status:   models.MatchupPending,
				HomeSeed: models.WinnerOf(prevStart + 2*i),
				AwaySeed: models.WinnerOf(prevStart + 2*i + 1),
			})
		}
		prevStart += prevCount
		prevCount = count
	}

	resolveByes(matchups)
	return matchups, nil
}

// resolveByes pushes bye teams forward and marks later games that can only ever
// receive one team as byes too. A first-round game with no teams feeds nothing;
// the game it feeds drops that seed and waits on its other side alone.
// Matchups must be in position order so feeders are seen before the games they feed.
func resolveByes(matchups []models.Matchup) {
	empty := make(map[int]bool)

	for i := range matchups {
		m := &matchups[i]

		if m.HomeSeed == nil && m.AwaySeed == nil {
			switch {
			case m.Status == models.MatchupBye && m.HomeTeamID != nil:
				AdvanceWinner(matchups, m, *m.HomeTeamID)
			case m.Status == models.MatchupBye && m.AwayTeamID != nil:
				AdvanceWinner(matchups, m, *m.AwayTeamID)
			case m.HomeTeamID == nil && m.AwayTeamID == nil:
				empty[m.Position] = true
			}
			continue
		}

		homeEmpty := m.HomeSeed != nil && m.HomeSeed.Kind == models.SeedKindWinnerOf && empty[m.HomeSeed.Position]
		awayEmpty := m.AwaySeed != nil && m.AwaySeed.Kind == models.SeedKindWinnerOf && empty[m.AwaySeed.Position]

		switch {
		case homeEmpty && awayEmpty:
			empty[m.Position] = true
		case homeEmpty:
			m.HomeSeed = nil
			m.Status = models.MatchupBye
			if m.AwayTeamID != nil {
				AdvanceWinner(matchups, m, *m.AwayTeamID)
			}
		case awayEmpty:
			m.AwaySeed = nil
			m.Status = models.MatchupBye
			if m.HomeTeamID != nil {
				AdvanceWinner(matchups, m, *m.HomeTeamID)
			}
		}
	}
}
