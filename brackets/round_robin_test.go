package brackets

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/Dosada05/competition-manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func teamNames(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("t%d", i+1)
	}
	return out
}

func pairKey(m models.Matchup) string {
	pair := []string{*m.HomeTeamID, *m.AwayTeamID}
	sort.Strings(pair)
	return pair[0] + "-" + pair[1]
}

func TestRoundRobinGenerator_EveryPairOnce(t *testing.T) {
	gen := NewRoundRobinGenerator()

	for n := 0; n <= 9; n++ {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			teams := teamNames(n)
			matchups, err := gen.GenerateBracket(context.Background(), GenerateBracketParams{PoolID: "p1", TeamIDs: teams})
			require.NoError(t, err)

			expected := 0
			if n > 1 {
				expected = n * (n - 1) / 2
			}
			assert.Len(t, matchups, expected)

			seen := make(map[string]bool)
			for _, m := range matchups {
				require.NotNil(t, m.HomeTeamID)
				require.NotNil(t, m.AwayTeamID)
				assert.NotEqual(t, *m.HomeTeamID, *m.AwayTeamID)
				assert.Equal(t, models.MatchupScheduled, m.Status)
				assert.Equal(t, "p1", m.PoolID)
				assert.Equal(t, models.MatchupKindPool, m.Kind)
				assert.Nil(t, m.HomeScore)
				assert.Nil(t, m.AwayScore)

				key := pairKey(m)
				assert.False(t, seen[key], "pair %s scheduled twice", key)
				seen[key] = true
			}
		})
	}
}

func TestRoundRobinGenerator_ThreeTeams(t *testing.T) {
	matchups := SchedulePool(context.Background(), models.Pool{ID: "p", TeamIDs: []string{"A", "B", "C"}})
	require.Len(t, matchups, 3)

	got := make([]string, 0, len(matchups))
	for _, m := range matchups {
		got = append(got, pairKey(m))
	}
	assert.ElementsMatch(t, []string{"A-B", "B-C", "A-C"}, got)
}

func TestRoundRobinGenerator_NoTeamTwiceInARound(t *testing.T) {
	matchups := SchedulePool(context.Background(), models.Pool{ID: "p", TeamIDs: teamNames(6)})

	byRound := make(map[int]map[string]bool)
	for _, m := range matchups {
		if byRound[m.Round] == nil {
			byRound[m.Round] = make(map[string]bool)
		}
		for _, id := range []string{*m.HomeTeamID, *m.AwayTeamID} {
			assert.False(t, byRound[m.Round][id], "team %s twice in round %d", id, m.Round)
			byRound[m.Round][id] = true
		}
	}
	assert.Len(t, byRound, 5)
}

func TestRoundRobinGenerator_Deterministic(t *testing.T) {
	pool := models.Pool{ID: "p", TeamIDs: teamNames(5)}
	first := SchedulePool(context.Background(), pool)
	second := SchedulePool(context.Background(), pool)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, *first[i].HomeTeamID, *second[i].HomeTeamID)
		assert.Equal(t, *first[i].AwayTeamID, *second[i].AwayTeamID)
		assert.Equal(t, first[i].Round, second[i].Round)
	}
}
