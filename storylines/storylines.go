// Package storylines pulls narratively interesting facts out of a competition's results.
package storylines

import (
	"fmt"
	"strings"

	"github.com/Dosada05/competition-manager/models"
	"github.com/Dosada05/competition-manager/standings"
)

const (
	unseeded          = 999
	closeGameMaxDelta = 2
)

type Input struct {
	Competition *models.Competition
	// TeamNames maps team id to display name. Missing names fall back to the id.
	TeamNames map[string]string
	// PreRatings holds known pre-competition ratings only.
	PreRatings map[string]float64
	// Seeds overrides Competition.Seeds when set.
	Seeds map[string]int
}

type Game struct {
	MatchupID  string `json:"matchup_id"`
	HomeTeamID string `json:"home_team_id"`
	AwayTeamID string `json:"away_team_id"`
	HomeScore  int    `json:"home_score"`
	AwayScore  int    `json:"away_score"`
	Margin     int    `json:"margin"`
}

type SeedUpset struct {
	Game
	WinnerID   string `json:"winner_id"`
	LoserID    string `json:"loser_id"`
	WinnerSeed int    `json:"winner_seed"`
	LoserSeed  int    `json:"loser_seed"`
	SeedGap    int    `json:"seed_gap"`
}

type RatingUpset struct {
	Game
	WinnerID     string  `json:"winner_id"`
	LoserID      string  `json:"loser_id"`
	WinnerRating float64 `json:"winner_rating"`
	LoserRating  float64 `json:"loser_rating"`
	RatingGap    float64 `json:"rating_gap"`
}

type Cinderella struct {
	TeamID      string   `json:"team_id"`
	Wins        int      `json:"wins"`
	Losses      int      `json:"losses"`
	Seed        *int     `json:"seed,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Description string   `json:"description"`
	score       float64
}

type GroupOfDeath struct {
	PoolID        string  `json:"pool_id"`
	PoolName      string  `json:"pool_name"`
	AverageRating float64 `json:"average_rating"`
	RatedTeams    int     `json:"rated_teams"`
}

type Dominant struct {
	TeamID    string `json:"team_id"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	PointDiff int    `json:"point_diff"`
}

// Findings are independently nil when the results do not support them.
type Findings struct {
	BiggestSeedUpset    *SeedUpset    `json:"biggest_seed_upset"`
	BiggestRatingUpset  *RatingUpset  `json:"biggest_rating_upset"`
	ClosestGame         *Game         `json:"closest_game"`
	BiggestBlowout      *Game         `json:"biggest_blowout"`
	Cinderella          *Cinderella   `json:"cinderella"`
	GroupOfDeath        *GroupOfDeath `json:"group_of_death"`
	DominantPerformance *Dominant     `json:"dominant_performance"`
}

type Report struct {
	Findings  Findings `json:"findings"`
	Narrative string   `json:"narrative"`
}

type generator struct {
	in       Input
	seeds    map[string]int
	teamIDs  []string
	games    []models.Matchup
	records  map[string]models.StandingRecord
	findings Findings
}

func Generate(in Input) Report {
	g := &generator{in: in, seeds: in.Seeds}
	if g.seeds == nil && in.Competition != nil {
		g.seeds = in.Competition.Seeds
	}
	if in.Competition != nil {
		g.teamIDs = competitionTeams(in.Competition)
		for _, m := range in.Competition.AllMatchups() {
			if m.Completed() && m.HasBothTeams() {
				g.games = append(g.games, m)
			}
		}
	}
	g.records = standings.Compute(g.teamIDs, g.games)

	g.findings = Findings{
		BiggestSeedUpset:    g.seedUpset(),
		BiggestRatingUpset:  g.ratingUpset(),
		ClosestGame:         g.closestGame(),
		BiggestBlowout:      g.biggestBlowout(),
		Cinderella:          g.cinderella(),
		GroupOfDeath:        g.groupOfDeath(),
		DominantPerformance: g.dominant(),
	}

	return Report{Findings: g.findings, Narrative: g.narrative()}
}

// competitionTeams lists the roster followed by any pool team missing from it.
func competitionTeams(c *models.Competition) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, id := range c.TeamIDs {
		add(id)
	}
	for _, p := range c.Pools {
		for _, id := range p.TeamIDs {
			add(id)
		}
	}
	return ids
}

func gameOf(m *models.Matchup) Game {
	return Game{
		MatchupID:  m.ID,
		HomeTeamID: *m.HomeTeamID,
		AwayTeamID: *m.AwayTeamID,
		HomeScore:  *m.HomeScore,
		AwayScore:  *m.AwayScore,
		Margin:     m.Margin(),
	}
}

func (g *generator) seedUpset() *SeedUpset {
	var best *SeedUpset
	for i := range g.games {
		m := &g.games[i]
		winner, ok := m.Winner()
		if !ok {
			continue
		}
		loser, _ := m.Loser()
		ws, wok := g.seeds[winner]
		ls, lok := g.seeds[loser]
		if !wok || !lok || ws <= ls {
			continue
		}
		if best == nil || ws-ls > best.SeedGap {
			best = &SeedUpset{
				Game:       gameOf(m),
				WinnerID:   winner,
				LoserID:    loser,
				WinnerSeed: ws,
				LoserSeed:  ls,
				SeedGap:    ws - ls,
			}
		}
	}
	return best
}

func (g *generator) ratingUpset() *RatingUpset {
	var best *RatingUpset
	for i := range g.games {
		m := &g.games[i]
		winner, ok := m.Winner()
		if !ok {
			continue
		}
		loser, _ := m.Loser()
		wr, wok := g.in.PreRatings[winner]
		lr, lok := g.in.PreRatings[loser]
		if !wok || !lok || wr >= lr {
			continue
		}
		if best == nil || lr-wr > best.RatingGap {
			best = &RatingUpset{
				Game:         gameOf(m),
				WinnerID:     winner,
				LoserID:      loser,
				WinnerRating: wr,
				LoserRating:  lr,
				RatingGap:    lr - wr,
			}
		}
	}
	return best
}

func (g *generator) closestGame() *Game {
	var best *Game
	for i := range g.games {
		game := gameOf(&g.games[i])
		if best == nil || game.Margin < best.Margin {
			best = &game
		}
	}
	return best
}

func (g *generator) biggestBlowout() *Game {
	var best *Game
	for i := range g.games {
		game := gameOf(&g.games[i])
		if best == nil || game.Margin > best.Margin {
			best = &game
		}
	}
	return best
}

// cinderella favours winning teams with poor seeds or low ratings. An unknown
// rating drops out of the score instead of counting as zero.
func (g *generator) cinderella() *Cinderella {
	var best *Cinderella
	for _, id := range g.teamIDs {
		rec := g.records[id]
		played := rec.GamesPlayed()
		if played == 0 || float64(rec.Wins)/float64(played) < 0.5 {
			continue
		}

		c := Cinderella{TeamID: id, Wins: rec.Wins, Losses: rec.Losses}
		var parts []string
		seed := unseeded
		if s, ok := g.seeds[id]; ok {
			seed = s
			c.Seed = &s
			parts = append(parts, fmt.Sprintf("seed %d", s))
		}
		c.score = float64(seed) * 100
		if r, ok := g.in.PreRatings[id]; ok {
			c.Rating = &r
			c.score -= r
			parts = append(parts, fmt.Sprintf("rated %.0f", r))
		}
		c.Description = strings.Join(parts, ", ")

		if best == nil || c.score > best.score {
			best = &c
		}
	}
	return best
}

func (g *generator) groupOfDeath() *GroupOfDeath {
	c := g.in.Competition
	if c == nil || len(c.Pools) <= 1 {
		return nil
	}

	var best *GroupOfDeath
	for _, p := range c.Pools {
		var sum float64
		var rated int
		for _, id := range p.TeamIDs {
			if r, ok := g.in.PreRatings[id]; ok {
				sum += r
				rated++
			}
		}
		if rated < 2 {
			continue
		}
		avg := sum / float64(rated)
		if best == nil || avg > best.AverageRating {
			best = &GroupOfDeath{PoolID: p.ID, PoolName: p.Name, AverageRating: avg, RatedTeams: rated}
		}
	}
	return best
}

func (g *generator) dominant() *Dominant {
	var best *Dominant
	bestScore := 0
	for _, id := range g.teamIDs {
		rec := g.records[id]
		if rec.GamesPlayed() < 2 {
			continue
		}
		score := rec.Wins*100 + rec.PointDiff
		if best == nil || score > bestScore {
			best = &Dominant{TeamID: id, Wins: rec.Wins, Losses: rec.Losses, PointDiff: rec.PointDiff}
			bestScore = score
		}
	}
	return best
}

func (g *generator) name(teamID string) string {
	if n, ok := g.in.TeamNames[teamID]; ok && n != "" {
		return n
	}
	return teamID
}

// champion finds the completed final, if any.
func (g *generator) champion() (winner, loser string, ws, ls int, ok bool) {
	if g.in.Competition == nil {
		return "", "", 0, 0, false
	}
	for i := range g.in.Competition.BracketMatchups {
		m := &g.in.Competition.BracketMatchups[i]
		if m.Round != 1 {
			continue
		}
		w, found := m.Winner()
		if !found {
			continue
		}
		l, _ := m.Loser()
		ws, ls, _ = m.ScoreFor(w)
		return w, l, ws, ls, true
	}
	return "", "", 0, 0, false
}

func (g *generator) narrative() string {
	var sentences []string
	add := func(format string, args ...any) {
		sentences = append(sentences, fmt.Sprintf(format, args...))
	}

	name := "The competition"
	pools := 0
	if c := g.in.Competition; c != nil {
		if c.Name != "" {
			name = c.Name
		}
		pools = len(c.Pools)
	}
	if pools > 0 {
		add("%s featured %d teams across %d pools with %d completed games.", name, len(g.teamIDs), pools, len(g.games))
	} else {
		add("%s featured %d teams with %d completed games.", name, len(g.teamIDs), len(g.games))
	}

	if w, l, ws, ls, ok := g.champion(); ok {
		add("%s won the championship, beating %s %d-%d.", g.name(w), g.name(l), ws, ls)
	}

	f := g.findings
	if d := f.DominantPerformance; d != nil {
		add("%s dominated with a %d-%d record and a %+d point differential.", g.name(d.TeamID), d.Wins, d.Losses, d.PointDiff)
	}

	switch {
	case f.BiggestSeedUpset != nil:
		u := f.BiggestSeedUpset
		add("The biggest upset saw #%d seed %s beat #%d seed %s %d-%d.",
			u.WinnerSeed, g.name(u.WinnerID), u.LoserSeed, g.name(u.LoserID), max(u.HomeScore, u.AwayScore), min(u.HomeScore, u.AwayScore))
	case f.BiggestRatingUpset != nil:
		u := f.BiggestRatingUpset
		add("The biggest upset saw %s (rated %.0f) beat %s (rated %.0f) %d-%d.",
			g.name(u.WinnerID), u.WinnerRating, g.name(u.LoserID), u.LoserRating, max(u.HomeScore, u.AwayScore), min(u.HomeScore, u.AwayScore))
	}

	if c := f.Cinderella; c != nil && c.Description != "" {
		add("%s (%s) was the Cinderella story at %d-%d.", g.name(c.TeamID), c.Description, c.Wins, c.Losses)
	}

	if cg := f.ClosestGame; cg != nil && cg.Margin <= closeGameMaxDelta {
		add("The closest game was %s %d-%d %s.", g.name(cg.HomeTeamID), cg.HomeScore, cg.AwayScore, g.name(cg.AwayTeamID))
	}

	if gd := f.GroupOfDeath; gd != nil {
		pool := gd.PoolName
		if pool == "" {
			pool = gd.PoolID
		}
		add("%s was the group of death with an average rating of %.0f.", pool, gd.AverageRating)
	}

	if len(g.games) > 0 {
		var points, margins int
		for i := range g.games {
			points += *g.games[i].HomeScore + *g.games[i].AwayScore
			margins += g.games[i].Margin()
		}
		n := float64(len(g.games))
		add("Games averaged %.1f total points with an average margin of %.1f.", float64(points)/n, float64(margins)/n)
	}

	return strings.Join(sentences, " ")
}
