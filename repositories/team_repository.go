package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/Dosada05/competition-manager/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound = errors.New("team not found")
	ErrTeamConflict = errors.New("team with this id or name already exists")
)

// TeamRepository is the team registry. Competitions only reference team ids.
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id string) (*models.Team, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Team, error)
}

type postgresTeamRepository struct {
	db SQLExecutor
}

func NewPostgresTeamRepository(db SQLExecutor) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `INSERT INTO teams (id, name) VALUES ($1, $2) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, team.ID, team.Name).Scan(&team.CreatedAt)
	return handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id string) (*models.Team, error) {
	query := `SELECT id, name, created_at FROM teams WHERE id = $1`

	var team models.Team
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&team.ID, &team.Name, &team.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &team, nil
}

// ListByIDs returns the known teams among ids. Unknown ids are skipped.
func (r *postgresTeamRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Team, error) {
	teams := make([]models.Team, 0, len(ids))
	if len(ids) == 0 {
		return teams, nil
	}

	query := `SELECT id, name, created_at FROM teams WHERE id = ANY($1) ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var team models.Team
		if scanErr := rows.Scan(&team.ID, &team.Name, &team.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrTeamConflict
	}
	return err
}

type memoryTeamRepository struct {
	mu    sync.RWMutex
	teams map[string]models.Team
}

func NewMemoryTeamRepository() TeamRepository {
	return &memoryTeamRepository{teams: make(map[string]models.Team)}
}

func (r *memoryTeamRepository) Create(_ context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.teams {
		if existing.ID == team.ID || existing.Name == team.Name {
			return ErrTeamConflict
		}
	}
	if team.CreatedAt.IsZero() {
		team.CreatedAt = time.Now().UTC()
	}
	r.teams[team.ID] = *team
	return nil
}

func (r *memoryTeamRepository) GetByID(_ context.Context, id string) (*models.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	team, ok := r.teams[id]
	if !ok {
		return nil, ErrTeamNotFound
	}
	return &team, nil
}

func (r *memoryTeamRepository) ListByIDs(_ context.Context, ids []string) ([]models.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	teams := make([]models.Team, 0, len(ids))
	for _, id := range ids {
		if team, ok := r.teams[id]; ok {
			teams = append(teams, team)
		}
	}
	return teams, nil
}
