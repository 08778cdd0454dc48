package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/competition-manager/brackets"
	"github.com/Dosada05/competition-manager/models"
	"github.com/Dosada05/competition-manager/rating"
	"github.com/Dosada05/competition-manager/repositories"
	"github.com/Dosada05/competition-manager/standings"
	"github.com/Dosada05/competition-manager/storage"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Broadcaster pushes live updates to viewers of a competition.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// Archiver stores the final snapshot of a finished competition.
type Archiver interface {
	Archive(ctx context.Context, c *models.Competition) (*storage.UploadResult, error)
	Remove(ctx context.Context, competitionID string) error
}

// RatingReferenceProvider returns the current external rating table.
type RatingReferenceProvider interface {
	Get(ctx context.Context) (*rating.Reference, error)
}

type PoolInput struct {
	Name    string   `json:"name"`
	TeamIDs []string `json:"team_ids"`
}

type CreateCompetitionInput struct {
	Name     string         `json:"name"`
	Format   models.Format  `json:"format"`
	TeamIDs  []string       `json:"team_ids"`
	Pools    []PoolInput    `json:"pools"`
	Seeds    map[string]int `json:"seeds"`
	SeasonID *string        `json:"season_id"`
}

type RecordResultInput struct {
	MatchupID string             `json:"matchup_id"`
	Kind      models.MatchupKind `json:"kind"`
	HomeScore int                `json:"home_score"`
	AwayScore int                `json:"away_score"`
	GameID    *string            `json:"game_id"`
}

type CompetitionService interface {
	Create(ctx context.Context, input CreateCompetitionInput) (*models.Competition, error)
	Get(ctx context.Context, id string) (*models.Competition, error)
	List(ctx context.Context, filter repositories.ListCompetitionsFilter) ([]models.Competition, error)
	Delete(ctx context.Context, id string) error

	SchedulePool(ctx context.Context, competitionID, poolID string) ([]models.Matchup, error)
	ScheduleAllPools(ctx context.Context, competitionID string) ([]models.Matchup, error)

	GetStandings(ctx context.Context, competitionID string) (*StandingsView, error)
	SeasonStandings(ctx context.Context, seasonID string) (*SeasonStandingsView, error)

	GenerateBracket(ctx context.Context, competitionID string) ([]models.Matchup, error)
	GetBracket(ctx context.Context, competitionID string) (*BracketView, error)

	RecordResult(ctx context.Context, competitionID string, input RecordResultInput) (*models.Matchup, error)
	ResultsSummary(ctx context.Context, competitionID string) (*ResultsSummary, error)
}

type competitionService struct {
	competitionRepo repositories.CompetitionRepository
	teamRepo        repositories.TeamRepository
	ratings         RatingReferenceProvider
	model           *rating.Model
	broadcaster     Broadcaster
	archiver        Archiver
	logger          *slog.Logger
	locks           *keyedMutex
	now             func() time.Time
}

// NewCompetitionService wires the service. ratings, broadcaster and archiver may be nil.
func NewCompetitionService(
	competitionRepo repositories.CompetitionRepository,
	teamRepo repositories.TeamRepository,
	ratings RatingReferenceProvider,
	model *rating.Model,
	broadcaster Broadcaster,
	archiver Archiver,
	logger *slog.Logger,
) CompetitionService {
	if model == nil {
		model = rating.NewModel(rating.DefaultConfig())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &competitionService{
		competitionRepo: competitionRepo,
		teamRepo:        teamRepo,
		ratings:         ratings,
		model:           model,
		broadcaster:     broadcaster,
		archiver:        archiver,
		logger:          logger,
		locks:           newKeyedMutex(),
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *competitionService) Create(ctx context.Context, input CreateCompetitionInput) (*models.Competition, error) {
	now := s.now()
	c := &models.Competition{
		ID:              uuid.NewString(),
		Name:            normalizeName(input.Name),
		Format:          input.Format,
		TeamIDs:         dedupe(input.TeamIDs),
		Pools:           make([]models.Pool, 0, len(input.Pools)),
		PoolMatchups:    make([]models.Matchup, 0),
		BracketMatchups: make([]models.Matchup, 0),
		Seeds:           input.Seeds,
		SeasonID:        input.SeasonID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	c.Slug = slug.Make(c.Name)

	for i, p := range input.Pools {
		name := normalizeName(p.Name)
		if name == "" {
			name = "Pool " + brackets.PoolLabel(i)
		}
		c.Pools = append(c.Pools, models.Pool{ID: uuid.NewString(), Name: name, TeamIDs: dedupe(p.TeamIDs)})
	}
	// без явного списка команд ростер собирается из пулов
	if len(c.TeamIDs) == 0 {
		var roster []string
		for _, p := range c.Pools {
			roster = append(roster, p.TeamIDs...)
		}
		c.TeamIDs = dedupe(roster)
	}

	if err := c.Validate(); err != nil {
		return nil, validationError(err)
	}
	if err := validateSeeds(c); err != nil {
		return nil, err
	}
	c.PoolStandings = standings.ComputePools(c)

	if err := s.competitionRepo.Create(ctx, c); err != nil {
		return nil, handleRepositoryError(err, c.ID)
	}

	s.logger.Info("competition created",
		slog.String("competition_id", c.ID),
		slog.String("format", string(c.Format)),
		slog.Int("teams", len(c.TeamIDs)),
		slog.Int("pools", len(c.Pools)),
	)
	return c, nil
}

func validateSeeds(c *models.Competition) error {
	roster := make(map[string]bool, len(c.TeamIDs))
	for _, id := range c.TeamIDs {
		roster[id] = true
	}
	for teamID, seed := range c.Seeds {
		if !roster[teamID] {
			return fmt.Errorf("%w: seeded team %s is not in the competition", ErrValidationFailed, teamID)
		}
		if seed < 1 {
			return fmt.Errorf("%w: seed for team %s must be positive", ErrValidationFailed, teamID)
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func (s *competitionService) Get(ctx context.Context, id string) (*models.Competition, error) {
	c, err := s.competitionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, id)
	}
	return c, nil
}

func (s *competitionService) List(ctx context.Context, filter repositories.ListCompetitionsFilter) ([]models.Competition, error) {
	competitions, err := s.competitionRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list competitions: %w", err)
	}
	return competitions, nil
}

func (s *competitionService) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.competitionRepo.Delete(ctx, id); err != nil {
		return handleRepositoryError(err, id)
	}
	s.logger.Info("competition deleted", slog.String("competition_id", id))

	// снимок в архиве есть только у завершённых соревнований
	if s.archiver != nil {
		if err := s.archiver.Remove(ctx, id); err != nil {
			s.logger.Warn("failed to remove competition archive",
				slog.String("competition_id", id),
				slog.Any("error", err),
			)
		}
	}
	return nil
}

// mutate loads a competition under its lock, applies fn and saves the result.
// fn leaves the competition untouched when it returns an error.
func (s *competitionService) mutate(ctx context.Context, id string, fn func(c *models.Competition) error) (*models.Competition, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	c, err := s.competitionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, id)
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	c.UpdatedAt = s.now()
	if err := s.competitionRepo.Update(ctx, c); err != nil {
		return nil, handleRepositoryError(err, id)
	}
	return c, nil
}

func (s *competitionService) broadcast(competitionID, messageType string, payload interface{}) {
	if s.broadcaster == nil {
		return
	}
	room := brackets.CompetitionRoom(competitionID)
	s.broadcaster.BroadcastToRoom(room, brackets.WebSocketMessage{
		Type:    messageType,
		Payload: payload,
		RoomID:  room,
	})
}

func (s *competitionService) SchedulePool(ctx context.Context, competitionID, poolID string) ([]models.Matchup, error) {
	var scheduled []models.Matchup
	_, err := s.mutate(ctx, competitionID, func(c *models.Competition) error {
		if !c.Format.HasPools() {
			return fmt.Errorf("%w: %s is a %s competition", ErrPoolsNotSupported, competitionID, c.Format)
		}
		pool, ok := c.Pool(poolID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrPoolNotFound, poolID)
		}
		if poolHasResults(c, poolID) {
			return fmt.Errorf("%w: %s", ErrPoolHasResults, poolID)
		}
		scheduled = schedulePool(ctx, c, *pool)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pool scheduled",
		slog.String("competition_id", competitionID),
		slog.String("pool_id", poolID),
		slog.Int("matchups", len(scheduled)),
	)
	s.broadcast(competitionID, brackets.MessageScheduleUpdated, scheduled)
	return scheduled, nil
}

func (s *competitionService) ScheduleAllPools(ctx context.Context, competitionID string) ([]models.Matchup, error) {
	c, err := s.mutate(ctx, competitionID, func(c *models.Competition) error {
		if !c.Format.HasPools() {
			return fmt.Errorf("%w: %s is a %s competition", ErrPoolsNotSupported, competitionID, c.Format)
		}
		for _, p := range c.Pools {
			if poolHasResults(c, p.ID) {
				return fmt.Errorf("%w: %s", ErrPoolHasResults, p.ID)
			}
		}
		for _, p := range c.Pools {
			schedulePool(ctx, c, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("all pools scheduled",
		slog.String("competition_id", competitionID),
		slog.Int("matchups", len(c.PoolMatchups)),
	)
	s.broadcast(competitionID, brackets.MessageScheduleUpdated, c.PoolMatchups)
	return c.PoolMatchups, nil
}

func poolHasResults(c *models.Competition, poolID string) bool {
	for _, m := range c.PoolMatchupsFor(poolID) {
		if m.Status == models.MatchupCompleted || m.Status == models.MatchupInProgress {
			return true
		}
	}
	return false
}

// schedulePool replaces the pool's matchups with a fresh round robin and resets its table.
func schedulePool(ctx context.Context, c *models.Competition, pool models.Pool) []models.Matchup {
	scheduled := brackets.SchedulePool(ctx, pool)

	kept := make([]models.Matchup, 0, len(c.PoolMatchups)+len(scheduled))
	for _, m := range c.PoolMatchups {
		if m.PoolID != pool.ID {
			kept = append(kept, m)
		}
	}
	c.PoolMatchups = append(kept, scheduled...)

	if c.PoolStandings == nil {
		c.PoolStandings = make(map[string]map[string]models.StandingRecord)
	}
	c.PoolStandings[pool.ID] = standings.Compute(pool.TeamIDs, c.PoolMatchupsFor(pool.ID))
	return scheduled
}
