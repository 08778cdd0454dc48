package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/competition-manager/models"
	"github.com/Dosada05/competition-manager/repositories"
	"github.com/google/uuid"
)

type CreateTeamInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TeamService регистрирует команды, на которые ссылаются соревнования.
type TeamService interface {
	Create(ctx context.Context, input CreateTeamInput, createdBy string) (*models.Team, error)
	GetByID(ctx context.Context, id string) (*models.Team, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	logger   *slog.Logger
}

func NewTeamService(teamRepo repositories.TeamRepository, logger *slog.Logger) TeamService {
	if logger == nil {
		logger = slog.Default()
	}
	return &teamService{teamRepo: teamRepo, logger: logger}
}

func (s *teamService) Create(ctx context.Context, input CreateTeamInput, createdBy string) (*models.Team, error) {
	name := normalizeName(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: team name is required", ErrValidationFailed)
	}

	team := &models.Team{ID: strings.TrimSpace(input.ID), Name: name}
	if team.ID == "" {
		team.ID = uuid.NewString()
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, handleTeamRepositoryError(err, team.ID)
	}

	s.logger.Info("team registered",
		slog.String("team_id", team.ID),
		slog.String("created_by", createdBy),
	)
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id string) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleTeamRepositoryError(err, id)
	}
	return team, nil
}

func (s *teamService) ListByIDs(ctx context.Context, ids []string) ([]models.Team, error) {
	return s.teamRepo.ListByIDs(ctx, ids)
}

func handleTeamRepositoryError(err error, teamID string) error {
	switch {
	case errors.Is(err, repositories.ErrTeamNotFound):
		return fmt.Errorf("%w: %s", ErrTeamNotFound, teamID)
	case errors.Is(err, repositories.ErrTeamConflict):
		return fmt.Errorf("%w: %s", ErrTeamConflict, teamID)
	}
	return err
}
