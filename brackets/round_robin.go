package brackets

import (
	"context"

	"github.com/Dosada05/competition-manager/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket schedules a single round robin for one pool with the circle method.
// Every unordered pair of teams meets exactly once; pools of 0 or 1 teams get no games.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]models.Matchup, error) {
	matchups := make([]models.Matchup, 0)
	if len(params.TeamIDs) < 2 {
		return matchups, nil
	}

	// nil marks the synthetic bye slot
	slots := make([]*string, 0, len(params.TeamIDs)+1)
	for _, id := range params.TeamIDs {
		slots = append(slots, teamRef(id))
	}
	if len(slots)%2 == 1 {
		slots = append(slots, nil)
	}
	n := len(slots)

	for round := 1; round < n; round++ {
		for i := 0; i < n/2; i++ {
			home, away := slots[i], slots[n-1-i]
			if home == nil || away == nil {
				continue
			}
			matchups = append(matchups, models.Matchup{
				ID:         newMatchupID(),
				Kind:       models.MatchupKindPool,
				PoolID:     params.PoolID,
				Round:      round,
				HomeTeamID: teamRef(*home),
				AwayTeamID: teamRef(*away),
				Status:     models.MatchupScheduled,
			})
		}

		// first slot stays fixed, the second moves to the back
		second := slots[1]
		slots = append(slots[:1], slots[2:]...)
		slots = append(slots, second)
	}

	return matchups, nil
}

// SchedulePool is a shortcut for generating one pool's round robin.
func SchedulePool(ctx context.Context, pool models.Pool) []models.Matchup {
	matchups, _ := NewRoundRobinGenerator().GenerateBracket(ctx, GenerateBracketParams{
		PoolID:  pool.ID,
		TeamIDs: pool.TeamIDs,
	})
	return matchups
}
