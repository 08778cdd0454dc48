package services

import (
	"context"
	"testing"

	"github.com/Dosada05/competition-manager/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamService(t *testing.T) {
	ctx := context.Background()
	svc := NewTeamService(repositories.NewMemoryTeamRepository(), nil)

	team, err := svc.Create(ctx, CreateTeamInput{Name: "  Carleton   College "}, "organizer-1")
	require.NoError(t, err)
	assert.NotEmpty(t, team.ID)
	assert.Equal(t, "Carleton College", team.Name)

	named, err := svc.Create(ctx, CreateTeamInput{ID: "brown", Name: "Brown"}, "organizer-1")
	require.NoError(t, err)
	assert.Equal(t, "brown", named.ID)

	got, err := svc.GetByID(ctx, "brown")
	require.NoError(t, err)
	assert.Equal(t, "Brown", got.Name)

	_, err = svc.GetByID(ctx, "yale")
	assert.ErrorIs(t, err, ErrTeamNotFound)

	_, err = svc.Create(ctx, CreateTeamInput{Name: "Brown"}, "organizer-1")
	assert.ErrorIs(t, err, ErrTeamConflict)

	_, err = svc.Create(ctx, CreateTeamInput{Name: "   "}, "organizer-1")
	assert.ErrorIs(t, err, ErrValidationFailed)

	teams, err := svc.ListByIDs(ctx, []string{"brown", "yale", team.ID})
	require.NoError(t, err)
	assert.Len(t, teams, 2)
}
