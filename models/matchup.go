package models

import "fmt"

type MatchupStatus string

const (
	MatchupPending    MatchupStatus = "pending"
	MatchupScheduled  MatchupStatus = "scheduled"
	MatchupBye        MatchupStatus = "bye"
	MatchupInProgress MatchupStatus = "in_progress"
	MatchupCompleted  MatchupStatus = "completed"
)

type MatchupKind string

const (
	MatchupKindPool    MatchupKind = "pool"
	MatchupKindBracket MatchupKind = "bracket"
)

func (k MatchupKind) IsValid() bool {
	return k == MatchupKindPool || k == MatchupKindBracket
}

type SeedKind string

const (
	SeedKindPool     SeedKind = "pool-seed"
	SeedKindWinnerOf SeedKind = "winner-of"
)

// SeedLabel describes where a bracket slot's team comes from: either a pool
// finishing position or the winner of an earlier bracket game.
type SeedLabel struct {
	Kind     SeedKind `json:"kind"`
	Pool     string   `json:"pool,omitempty"`
	Rank     int      `json:"rank,omitempty"`
	Position int      `json:"position,omitempty"`
}

func PoolSeed(pool string, rank int) *SeedLabel {
	return &SeedLabel{Kind: SeedKindPool, Pool: pool, Rank: rank}
}

func WinnerOf(position int) *SeedLabel {
	return &SeedLabel{Kind: SeedKindWinnerOf, Position: position}
}

// Equal compares labels by value. A nil label never matches.
func (l *SeedLabel) Equal(other *SeedLabel) bool {
	if l == nil || other == nil {
		return false
	}
	return *l == *other
}

func (l *SeedLabel) String() string {
	if l == nil {
		return ""
	}
	switch l.Kind {
	case SeedKindPool:
		return fmt.Sprintf("%s%d", l.Pool, l.Rank)
	case SeedKindWinnerOf:
		return fmt.Sprintf("W%d", l.Position)
	}
	return ""
}

// Matchup is one game between two teams, either inside a pool or in the bracket.
type Matchup struct {
	ID         string        `json:"id"`
	Kind       MatchupKind   `json:"kind"`
	PoolID     string        `json:"pool_id,omitempty"`
	Round      int           `json:"round,omitempty"`
	Position   int           `json:"position,omitempty"`
	Slot       string        `json:"slot,omitempty"`
	HomeTeamID *string       `json:"home_team_id"`
	AwayTeamID *string       `json:"away_team_id"`
	HomeScore  *int          `json:"home_score"`
	AwayScore  *int          `json:"away_score"`
	Status     MatchupStatus `json:"status"`
	HomeSeed   *SeedLabel    `json:"home_seed,omitempty"`
	AwaySeed   *SeedLabel    `json:"away_seed,omitempty"`
	GameID     *string       `json:"game_id,omitempty"`
}

// Completed holds only when the status says so and both scores were reported.
func (m *Matchup) Completed() bool {
	return m.Status == MatchupCompleted && m.HomeScore != nil && m.AwayScore != nil
}

func (m *Matchup) HasBothTeams() bool {
	return m.HomeTeamID != nil && m.AwayTeamID != nil
}

// Involves reports whether teamID plays in this matchup.
func (m *Matchup) Involves(teamID string) bool {
	return (m.HomeTeamID != nil && *m.HomeTeamID == teamID) ||
		(m.AwayTeamID != nil && *m.AwayTeamID == teamID)
}

// Winner returns the team with the higher score. Ties and unfinished games have no winner.
func (m *Matchup) Winner() (string, bool) {
	if !m.Completed() || !m.HasBothTeams() {
		return "", false
	}
	switch {
	case *m.HomeScore > *m.AwayScore:
		return *m.HomeTeamID, true
	case *m.AwayScore > *m.HomeScore:
		return *m.AwayTeamID, true
	}
	return "", false
}

func (m *Matchup) Loser() (string, bool) {
	winner, ok := m.Winner()
	if !ok {
		return "", false
	}
	if winner == *m.HomeTeamID {
		return *m.AwayTeamID, true
	}
	return *m.HomeTeamID, true
}

// Margin is the absolute score difference of a completed matchup.
func (m *Matchup) Margin() int {
	if !m.Completed() {
		return 0
	}
	d := *m.HomeScore - *m.AwayScore
	if d < 0 {
		return -d
	}
	return d
}

// ScoreFor returns the score of teamID and of its opponent.
func (m *Matchup) ScoreFor(teamID string) (own, opp int, ok bool) {
	if !m.Completed() || !m.HasBothTeams() {
		return 0, 0, false
	}
	switch teamID {
	case *m.HomeTeamID:
		return *m.HomeScore, *m.AwayScore, true
	case *m.AwayTeamID:
		return *m.AwayScore, *m.HomeScore, true
	}
	return 0, 0, false
}

// Opponent returns the other team of the matchup.
func (m *Matchup) Opponent(teamID string) (string, bool) {
	if !m.HasBothTeams() {
		return "", false
	}
	switch teamID {
	case *m.HomeTeamID:
		return *m.AwayTeamID, true
	case *m.AwayTeamID:
		return *m.HomeTeamID, true
	}
	return "", false
}
