package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidFormat        = errors.New("invalid competition format")
	ErrBracketHasPools      = errors.New("bracket competitions cannot have pools")
	ErrTeamWithoutPool      = errors.New("team is not assigned to any pool")
	ErrTeamInMultiplePools  = errors.New("team appears in more than one pool")
	ErrPoolTeamNotInRoster  = errors.New("pool references a team outside the competition")
	ErrDuplicatePoolID      = errors.New("duplicate pool id")
	ErrCompetitionNameEmpty = errors.New("competition name is required")
)

// Pool is a round-robin group of teams.
type Pool struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	TeamIDs []string `json:"team_ids"`
}

// Competition is a tournament, or a league inside a season. It owns its pools
// and matchups; teams are only referenced by ID.
type Competition struct {
	ID              string                               `json:"id"`
	Name            string                               `json:"name"`
	Slug            string                               `json:"slug"`
	Format          Format                               `json:"format"`
	Pools           []Pool                               `json:"pools"`
	TeamIDs         []string                             `json:"team_ids"`
	PoolStandings   map[string]map[string]StandingRecord `json:"pool_standings"`
	BracketMatchups []Matchup                            `json:"bracket_matchups"`
	PoolMatchups    []Matchup                            `json:"pool_matchups"`
	Seeds           map[string]int                       `json:"seeds,omitempty"`
	SeasonID        *string                              `json:"season_id,omitempty"`
	CreatedAt       time.Time                            `json:"created_at"`
	UpdatedAt       time.Time                            `json:"updated_at"`
}

// Validate checks pool membership against the competition's format.
func (c *Competition) Validate() error {
	if c.Name == "" {
		return ErrCompetitionNameEmpty
	}
	if !c.Format.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Format)
	}
	if !c.Format.HasPools() {
		if len(c.Pools) > 0 {
			return ErrBracketHasPools
		}
		return nil
	}

	roster := make(map[string]bool, len(c.TeamIDs))
	for _, id := range c.TeamIDs {
		roster[id] = true
	}
	poolOf := make(map[string]string, len(c.TeamIDs))
	poolIDs := make(map[string]bool, len(c.Pools))
	for _, p := range c.Pools {
		if poolIDs[p.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicatePoolID, p.ID)
		}
		poolIDs[p.ID] = true
		for _, teamID := range p.TeamIDs {
			if !roster[teamID] {
				return fmt.Errorf("%w: team %s in pool %s", ErrPoolTeamNotInRoster, teamID, p.ID)
			}
			if other, ok := poolOf[teamID]; ok {
				return fmt.Errorf("%w: team %s in pools %s and %s", ErrTeamInMultiplePools, teamID, other, p.ID)
			}
			poolOf[teamID] = p.ID
		}
	}
	for _, id := range c.TeamIDs {
		if _, ok := poolOf[id]; !ok {
			return fmt.Errorf("%w: %s", ErrTeamWithoutPool, id)
		}
	}
	return nil
}

func (c *Competition) Pool(poolID string) (*Pool, bool) {
	for i := range c.Pools {
		if c.Pools[i].ID == poolID {
			return &c.Pools[i], true
		}
	}
	return nil, false
}

// PoolMatchupsFor returns the pool's slice of matchups, in schedule order.
func (c *Competition) PoolMatchupsFor(poolID string) []Matchup {
	out := make([]Matchup, 0)
	for _, m := range c.PoolMatchups {
		if m.PoolID == poolID {
			out = append(out, m)
		}
	}
	return out
}

// FindMatchup returns a pointer into the competition's own slice so callers can mutate it.
func (c *Competition) FindMatchup(kind MatchupKind, matchupID string) (*Matchup, bool) {
	list := c.PoolMatchups
	if kind == MatchupKindBracket {
		list = c.BracketMatchups
	}
	for i := range list {
		if list[i].ID == matchupID {
			return &list[i], true
		}
	}
	return nil, false
}

// AllMatchups returns pool matchups followed by bracket matchups.
func (c *Competition) AllMatchups() []Matchup {
	out := make([]Matchup, 0, len(c.PoolMatchups)+len(c.BracketMatchups))
	out = append(out, c.PoolMatchups...)
	out = append(out, c.BracketMatchups...)
	return out
}

// Seed returns the team's seed if one was assigned.
func (c *Competition) Seed(teamID string) (int, bool) {
	if c.Seeds == nil {
		return 0, false
	}
	s, ok := c.Seeds[teamID]
	return s, ok
}

// Variant is the format-specific view of a competition.
type Variant interface {
	format() Format
}

type PoolPlay struct {
	Pools        []Pool
	PoolMatchups []Matchup
}

type Bracket struct {
	TeamIDs  []string
	Matchups []Matchup
	Seeds    map[string]int
}

type PoolToBracket struct {
	Pools           []Pool
	PoolMatchups    []Matchup
	BracketMatchups []Matchup
	Seeds           map[string]int
}

func (PoolPlay) format() Format      { return FormatPoolPlay }
func (Bracket) format() Format       { return FormatBracket }
func (PoolToBracket) format() Format { return FormatPoolToBracket }

// Variant returns the tagged view matching the competition's format, or nil for an unknown format.
func (c *Competition) Variant() Variant {
	switch c.Format {
	case FormatPoolPlay:
		return PoolPlay{Pools: c.Pools, PoolMatchups: c.PoolMatchups}
	case FormatBracket:
		return Bracket{TeamIDs: c.TeamIDs, Matchups: c.BracketMatchups, Seeds: c.Seeds}
	case FormatPoolToBracket:
		return PoolToBracket{
			Pools:           c.Pools,
			PoolMatchups:    c.PoolMatchups,
			BracketMatchups: c.BracketMatchups,
			Seeds:           c.Seeds,
		}
	}
	return nil
}
