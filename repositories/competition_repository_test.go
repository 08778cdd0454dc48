package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/competition-manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompetition(id string, created time.Time, seasonID *string) *models.Competition {
	home, away := "t1", "t2"
	return &models.Competition{
		ID:        id,
		Name:      "Competition " + id,
		Format:    models.FormatPoolPlay,
		TeamIDs:   []string{home, away},
		Pools:     []models.Pool{{ID: "p1", Name: "Pool A", TeamIDs: []string{home, away}}},
		SeasonID:  seasonID,
		CreatedAt: created,
		UpdatedAt: created,
		PoolMatchups: []models.Matchup{{
			ID: "m1", Kind: models.MatchupKindPool, PoolID: "p1",
			HomeTeamID: &home, AwayTeamID: &away, Status: models.MatchupScheduled,
		}},
	}
}

func TestMemoryCompetitionRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCompetitionRepository()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	c := newCompetition("c1", now, nil)
	require.NoError(t, repo.Create(ctx, c))
	assert.ErrorIs(t, repo.Create(ctx, c), ErrCompetitionConflict)

	got, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, c, got)

	got.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", again.Name)

	assert.ErrorIs(t, repo.Update(ctx, newCompetition("missing", now, nil)), ErrCompetitionNotFound)

	require.NoError(t, repo.Delete(ctx, "c1"))
	_, err = repo.GetByID(ctx, "c1")
	assert.ErrorIs(t, err, ErrCompetitionNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "c1"), ErrCompetitionNotFound)
}

func TestMemoryCompetitionRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCompetitionRepository()
	c := newCompetition("c1", time.Now().UTC(), nil)
	require.NoError(t, repo.Create(ctx, c))

	c.PoolMatchups[0].Status = models.MatchupCompleted

	got, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, models.MatchupScheduled, got.PoolMatchups[0].Status)

	*got.PoolMatchups[0].HomeTeamID = "changed"
	stored, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "t1", *stored.PoolMatchups[0].HomeTeamID)
}

func TestMemoryCompetitionRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCompetitionRepository()
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	season := "s1"

	require.NoError(t, repo.Create(ctx, newCompetition("old", base, &season)))
	require.NoError(t, repo.Create(ctx, newCompetition("mid", base.Add(time.Hour), nil)))
	require.NoError(t, repo.Create(ctx, newCompetition("new", base.Add(2*time.Hour), &season)))

	all, err := repo.List(ctx, ListCompetitionsFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{all[0].ID, all[1].ID, all[2].ID})

	page, err := repo.List(ctx, ListCompetitionsFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "mid", page[0].ID)

	empty, err := repo.List(ctx, ListCompetitionsFilter{Offset: 5})
	require.NoError(t, err)
	assert.Empty(t, empty)

	inSeason, err := repo.ListBySeason(ctx, season)
	require.NoError(t, err)
	require.Len(t, inSeason, 2)
	assert.Equal(t, "new", inSeason[0].ID)
	assert.Equal(t, "old", inSeason[1].ID)
}

func TestMemoryTeamRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryTeamRepository()

	require.NoError(t, repo.Create(ctx, &models.Team{ID: "t1", Name: "Ring of Fire"}))
	require.NoError(t, repo.Create(ctx, &models.Team{ID: "t2", Name: "Truck Stop"}))
	assert.ErrorIs(t, repo.Create(ctx, &models.Team{ID: "t3", Name: "Truck Stop"}), ErrTeamConflict)

	team, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Ring of Fire", team.Name)
	assert.False(t, team.CreatedAt.IsZero())

	_, err = repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrTeamNotFound)

	teams, err := repo.ListByIDs(ctx, []string{"t2", "ghost", "t1"})
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "t2", teams[0].ID)
	assert.Equal(t, "t1", teams[1].ID)
}
