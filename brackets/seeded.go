package brackets

import (
	"context"

	"github.com/Dosada05/competition-manager/models"
)

// SeededTwoPoolGenerator builds the fixed crossover bracket for two pools:
// A1 v B2 and B1 v A2 in the semifinals (round 2), winners meet in the final (round 1).
type SeededTwoPoolGenerator struct{}

func NewSeededTwoPoolGenerator() BracketGenerator {
	return &SeededTwoPoolGenerator{}
}

func (g *SeededTwoPoolGenerator) GetName() string {
	return "SeededTwoPool"
}

func (g *SeededTwoPoolGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]models.Matchup, error) {
	a, b := PoolLabel(0), PoolLabel(1)
	if _, ok := params.Rankings[a]; !ok {
		return nil, ErrNotEnoughPools
	}
	if _, ok := params.Rankings[b]; !ok {
		return nil, ErrNotEnoughPools
	}

	matchups := []models.Matchup{
		{
			ID:       newMatchupID(),
			Kind:     models.MatchupKindBracket,
			Round:    2,
			Position: 1,
			Slot:     "SF1",
			Status:   models.MatchupPending,
			HomeSeed: models.PoolSeed(a, 1),
			AwaySeed: models.PoolSeed(b, 2),
		},
		{
			ID:       newMatchupID(),
			Kind:     models.MatchupKindBracket,
			Round:    2,
			Position: 2,
			Slot:     "SF2",
			Status:   models.MatchupPending,
			HomeSeed: models.PoolSeed(b, 1),
			AwaySeed: models.PoolSeed(a, 2),
		},
		{
			ID:       newMatchupID(),
			Kind:     models.MatchupKindBracket,
			Round:    1,
			Position: 3,
			Slot:     "F",
			Status:   models.MatchupPending,
			HomeSeed: models.WinnerOf(1),
			AwaySeed: models.WinnerOf(2),
		},
	}

	ResolvePoolSeeds(matchups, params.Rankings)
	return matchups, nil
}

// ResolvePoolSeeds fills pool-seed slots from the current pool rankings. Slots whose
// rank does not exist stay empty. Games that already started are left alone.
func ResolvePoolSeeds(matchups []models.Matchup, rankings map[string][]string) {
	resolve := func(label *models.SeedLabel) *string {
		ranking := rankings[label.Pool]
		if label.Rank < 1 || label.Rank > len(ranking) {
			return nil
		}
		return teamRef(ranking[label.Rank-1])
	}

	for i := range matchups {
		m := &matchups[i]
		if m.Status != models.MatchupPending && m.Status != models.MatchupScheduled {
			continue
		}
		if m.HomeSeed != nil && m.HomeSeed.Kind == models.SeedKindPool {
			m.HomeTeamID = resolve(m.HomeSeed)
		}
		if m.AwaySeed != nil && m.AwaySeed.Kind == models.SeedKindPool {
			m.AwayTeamID = resolve(m.AwaySeed)
		}
		if m.HasBothTeams() {
			m.Status = models.MatchupScheduled
		} else {
			m.Status = models.MatchupPending
		}
	}
}
