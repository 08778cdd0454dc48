package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/competition-manager/brackets"
	"github.com/Dosada05/competition-manager/models"
	"github.com/Dosada05/competition-manager/standings"
)

type BracketView struct {
	CompetitionID string             `json:"competition_id"`
	Rounds        [][]models.Matchup `json:"rounds"`
	ChampionID    *string            `json:"champion_id"`
}

// GenerateBracket builds the bracket that fits the competition format. A failed
// precondition leaves the competition as it was.
func (s *competitionService) GenerateBracket(ctx context.Context, competitionID string) ([]models.Matchup, error) {
	var generatorName string
	c, err := s.mutate(ctx, competitionID, func(c *models.Competition) error {
		for i := range c.BracketMatchups {
			if c.BracketMatchups[i].Completed() {
				return fmt.Errorf("%w: %s", ErrBracketInProgress, competitionID)
			}
		}

		generator, params, err := bracketPlan(c)
		if err != nil {
			return err
		}
		generatorName = generator.GetName()

		matchups, err := generator.GenerateBracket(ctx, params)
		if err != nil {
			return translateBracketError(err)
		}
		c.BracketMatchups = matchups
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bracket generated",
		slog.String("competition_id", competitionID),
		slog.String("generator", generatorName),
		slog.Int("matchups", len(c.BracketMatchups)),
	)
	s.broadcast(competitionID, brackets.MessageBracketUpdated, c.BracketMatchups)
	return c.BracketMatchups, nil
}

// bracketPlan picks the generator for the competition's variant.
func bracketPlan(c *models.Competition) (brackets.BracketGenerator, brackets.GenerateBracketParams, error) {
	params := brackets.GenerateBracketParams{Competition: c}

	switch v := c.Variant().(type) {
	case models.PoolPlay:
		return nil, params, fmt.Errorf("%w: %s", ErrBracketNotSupported, c.Format)

	case models.Bracket:
		params.TeamIDs = seededOrder(v.TeamIDs, v.Seeds)
		return brackets.NewSingleEliminationGenerator(), params, nil

	case models.PoolToBracket:
		switch {
		case len(v.Pools) < 2:
			return nil, params, fmt.Errorf("%w: found %d", ErrNotEnoughPools, len(v.Pools))
		case len(v.Pools) == 2:
			params.Rankings = labelledRankings(c)
			return brackets.NewSeededTwoPoolGenerator(), params, nil
		default:
			byPool := standings.PoolRankings(c)
			rankings := make([][]string, 0, len(v.Pools))
			for _, p := range v.Pools {
				rankings = append(rankings, byPool[p.ID])
			}
			params.TeamIDs = interleaveRankings(rankings)
			return brackets.NewSingleEliminationGenerator(), params, nil
		}
	}
	return nil, params, fmt.Errorf("%w: %q", ErrValidationFailed, c.Format)
}

func translateBracketError(err error) error {
	switch {
	case errors.Is(err, brackets.ErrNotEnoughTeams):
		return fmt.Errorf("%w: %w", ErrNotEnoughTeams, err)
	case errors.Is(err, brackets.ErrNotEnoughPools):
		return fmt.Errorf("%w: %w", ErrNotEnoughPools, err)
	}
	return fmt.Errorf("failed to generate bracket: %w", err)
}

func (s *competitionService) GetBracket(ctx context.Context, competitionID string) (*BracketView, error) {
	c, err := s.Get(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	if !c.Format.HasBracket() {
		return nil, fmt.Errorf("%w: %s", ErrBracketNotSupported, c.Format)
	}

	view := &BracketView{CompetitionID: c.ID, Rounds: brackets.Rounds(c.BracketMatchups)}
	if champion, ok := brackets.Champion(c.BracketMatchups); ok {
		view.ChampionID = &champion
	}
	return view, nil
}
