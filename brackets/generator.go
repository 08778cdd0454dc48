package brackets

import (
	"context"
	"errors"

	"github.com/Dosada05/competition-manager/models"
	"github.com/google/uuid"
)

var (
	ErrNotEnoughTeams = errors.New("not enough teams to generate a bracket (minimum 2)")
	ErrNotEnoughPools = errors.New("seeded bracket requires two ranked pools")
)

type GenerateBracketParams struct {
	Competition *models.Competition
	// PoolID is set when scheduling a single pool.
	PoolID string
	// TeamIDs in seeding order for single elimination, or pool order for round robin.
	TeamIDs []string
	// Rankings by pool label ("A", "B", ...) for the seeded two-pool bracket.
	Rankings map[string][]string
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]models.Matchup, error)

	GetName() string
}

// PoolLabel returns the letter used in seed labels for the i-th pool: A, B, C...
func PoolLabel(i int) string {
	if i < 0 || i >= 26 {
		return ""
	}
	return string(rune('A' + i))
}

func newMatchupID() string {
	return uuid.NewString()
}

func teamRef(id string) *string {
	return &id
}
