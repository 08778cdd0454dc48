package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/competition-manager/brackets"
	"github.com/Dosada05/competition-manager/models"
	"github.com/Dosada05/competition-manager/standings"
)

// RecordResult is the only way a matchup becomes completed. Pool results rebuild
// the pool table; bracket results move the winner on.
func (s *competitionService) RecordResult(ctx context.Context, competitionID string, input RecordResultInput) (*models.Matchup, error) {
	if !input.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown matchup kind %q", ErrValidationFailed, input.Kind)
	}
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return nil, ErrInvalidScore
	}
	if input.Kind == models.MatchupKindBracket && input.HomeScore == input.AwayScore {
		return nil, ErrInvalidScore
	}

	var (
		recorded       models.Matchup
		advanced       bool
		bracketChanged bool
	)
	c, err := s.mutate(ctx, competitionID, func(c *models.Competition) error {
		m, ok := c.FindMatchup(input.Kind, input.MatchupID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrMatchupNotFound, input.MatchupID)
		}
		if !m.HasBothTeams() {
			return fmt.Errorf("%w: %s", ErrMatchupNotReady, input.MatchupID)
		}
		if m.Kind == models.MatchupKindBracket && downstreamStarted(c.BracketMatchups, m) {
			return fmt.Errorf("%w: %s", ErrResultLocked, input.MatchupID)
		}

		home, away := input.HomeScore, input.AwayScore
		m.HomeScore = &home
		m.AwayScore = &away
		m.Status = models.MatchupCompleted
		if input.GameID != nil {
			m.GameID = input.GameID
		}
		recorded = *m

		switch m.Kind {
		case models.MatchupKindPool:
			pool, ok := c.Pool(m.PoolID)
			if !ok {
				return fmt.Errorf("%w: %s", ErrPoolNotFound, m.PoolID)
			}
			if c.PoolStandings == nil {
				c.PoolStandings = make(map[string]map[string]models.StandingRecord)
			}
			c.PoolStandings[pool.ID] = standings.Compute(pool.TeamIDs, c.PoolMatchupsFor(pool.ID))

			// посев полуфиналов следует за текущей таблицей, пока они не сыграны
			if c.Format == models.FormatPoolToBracket && len(c.Pools) == 2 && len(c.BracketMatchups) > 0 {
				brackets.ResolvePoolSeeds(c.BracketMatchups, labelledRankings(c))
				bracketChanged = true
			}
		case models.MatchupKindBracket:
			advanced = brackets.Advance(c.BracketMatchups, m)
			bracketChanged = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("result recorded",
		slog.String("competition_id", competitionID),
		slog.String("matchup_id", recorded.ID),
		slog.String("kind", string(recorded.Kind)),
		slog.Int("home_score", input.HomeScore),
		slog.Int("away_score", input.AwayScore),
		slog.Bool("advanced", advanced),
	)

	if recorded.Kind == models.MatchupKindPool {
		s.broadcast(competitionID, brackets.MessageStandingsUpdated, c.PoolStandings)
	}
	if bracketChanged {
		s.broadcast(competitionID, brackets.MessageBracketUpdated, c.BracketMatchups)
	}
	if recorded.Kind == models.MatchupKindBracket && recorded.Round == 1 {
		s.archiveFinished(ctx, c)
	}
	return &recorded, nil
}

// archiveFinished stores the final snapshot. Archive failures never fail the result.
func (s *competitionService) archiveFinished(ctx context.Context, c *models.Competition) {
	champion, ok := brackets.Champion(c.BracketMatchups)
	if !ok {
		return
	}
	s.logger.Info("competition finished",
		slog.String("competition_id", c.ID),
		slog.String("champion_id", champion),
	)
	if s.archiver == nil {
		return
	}
	res, err := s.archiver.Archive(ctx, c)
	if err != nil {
		s.logger.Error("failed to archive competition",
			slog.String("competition_id", c.ID),
			slog.Any("error", err),
		)
		return
	}
	s.logger.Info("competition archived",
		slog.String("competition_id", c.ID),
		slog.String("key", res.Key),
		slog.String("location", res.Location),
	)
}
