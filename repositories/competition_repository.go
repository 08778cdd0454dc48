package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Dosada05/competition-manager/models"
	"github.com/lib/pq"
)

var (
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrCompetitionConflict = errors.New("competition with this id already exists")
)

type ListCompetitionsFilter struct {
	SeasonID *string
	Limit    int
	Offset   int
}

// CompetitionRepository reads and writes a competition wholesale, pools and matchups included.
type CompetitionRepository interface {
	Create(ctx context.Context, c *models.Competition) error
	GetByID(ctx context.Context, id string) (*models.Competition, error)
	List(ctx context.Context, filter ListCompetitionsFilter) ([]models.Competition, error)
	ListBySeason(ctx context.Context, seasonID string) ([]models.Competition, error)
	Update(ctx context.Context, c *models.Competition) error
	Delete(ctx context.Context, id string) error
}

type postgresCompetitionRepository struct {
	db SQLExecutor
}

func NewPostgresCompetitionRepository(db SQLExecutor) CompetitionRepository {
	return &postgresCompetitionRepository{db: db}
}

func (r *postgresCompetitionRepository) Create(ctx context.Context, c *models.Competition) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode competition %s: %w", c.ID, err)
	}

	query := `
		INSERT INTO competitions (id, season_id, name, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.ExecContext(ctx, query, c.ID, c.SeasonID, c.Name, data, c.CreatedAt, c.UpdatedAt)
	return r.handleCompetitionError(err)
}

func (r *postgresCompetitionRepository) GetByID(ctx context.Context, id string) (*models.Competition, error) {
	query := `SELECT data FROM competitions WHERE id = $1`

	var data []byte
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, err
	}
	return decodeCompetition(data)
}

func (r *postgresCompetitionRepository) List(ctx context.Context, filter ListCompetitionsFilter) ([]models.Competition, error) {
	query := `SELECT data FROM competitions WHERE 1=1`

	args := []interface{}{}
	argID := 1

	if filter.SeasonID != nil {
		query += fmt.Sprintf(" AND season_id = $%d", argID)
		args = append(args, *filter.SeasonID)
		argID++
	}

	query += " ORDER BY created_at DESC, id"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	competitions := make([]models.Competition, 0)
	for rows.Next() {
		var data []byte
		if scanErr := rows.Scan(&data); scanErr != nil {
			return nil, scanErr
		}
		c, decodeErr := decodeCompetition(data)
		if decodeErr != nil {
			return nil, decodeErr
		}
		competitions = append(competitions, *c)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return competitions, nil
}

func (r *postgresCompetitionRepository) ListBySeason(ctx context.Context, seasonID string) ([]models.Competition, error) {
	return r.List(ctx, ListCompetitionsFilter{SeasonID: &seasonID})
}

func (r *postgresCompetitionRepository) Update(ctx context.Context, c *models.Competition) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode competition %s: %w", c.ID, err)
	}

	query := `
		UPDATE competitions SET
			season_id = $1,
			name = $2,
			data = $3,
			updated_at = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query, c.SeasonID, c.Name, data, c.UpdatedAt, c.ID)
	if err != nil {
		return r.handleCompetitionError(err)
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM competitions WHERE id = $1`, id)
	if err != nil {
		return r.handleCompetitionError(err)
	}
	return checkAffectedRows(result, ErrCompetitionNotFound)
}

func (r *postgresCompetitionRepository) handleCompetitionError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrCompetitionConflict
	}
	return err
}

func decodeCompetition(data []byte) (*models.Competition, error) {
	var c models.Competition
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode competition: %w", err)
	}
	return &c, nil
}

// memoryCompetitionRepository keeps deep copies so callers never share state with the store.
type memoryCompetitionRepository struct {
	mu           sync.RWMutex
	competitions map[string]*models.Competition
}

func NewMemoryCompetitionRepository() CompetitionRepository {
	return &memoryCompetitionRepository{competitions: make(map[string]*models.Competition)}
}

func (r *memoryCompetitionRepository) Create(_ context.Context, c *models.Competition) error {
	stored, err := deepCopy(c)
	if err != nil {
		return fmt.Errorf("failed to copy competition %s: %w", c.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.competitions[c.ID]; exists {
		return ErrCompetitionConflict
	}
	r.competitions[c.ID] = stored
	return nil
}

func (r *memoryCompetitionRepository) GetByID(_ context.Context, id string) (*models.Competition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.competitions[id]
	if !ok {
		return nil, ErrCompetitionNotFound
	}
	return deepCopy(c)
}

func (r *memoryCompetitionRepository) List(_ context.Context, filter ListCompetitionsFilter) ([]models.Competition, error) {
	r.mu.RLock()
	matched := make([]*models.Competition, 0, len(r.competitions))
	for _, c := range r.competitions {
		if filter.SeasonID != nil && (c.SeasonID == nil || *c.SeasonID != *filter.SeasonID) {
			continue
		}
		matched = append(matched, c)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	out := make([]models.Competition, 0, len(matched))
	for _, c := range matched {
		cp, err := deepCopy(c)
		if err != nil {
			return nil, err
		}
		out = append(out, *cp)
	}
	return out, nil
}

func (r *memoryCompetitionRepository) ListBySeason(ctx context.Context, seasonID string) ([]models.Competition, error) {
	return r.List(ctx, ListCompetitionsFilter{SeasonID: &seasonID})
}

func (r *memoryCompetitionRepository) Update(_ context.Context, c *models.Competition) error {
	stored, err := deepCopy(c)
	if err != nil {
		return fmt.Errorf("failed to copy competition %s: %w", c.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.competitions[c.ID]; !exists {
		return ErrCompetitionNotFound
	}
	r.competitions[c.ID] = stored
	return nil
}

func (r *memoryCompetitionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.competitions[id]; !exists {
		return ErrCompetitionNotFound
	}
	delete(r.competitions, id)
	return nil
}
