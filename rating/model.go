// Package rating estimates how a competition moves each team's external rating.
//
// The curve and the blowout thresholds are empirical; they live in Config so they
// can be tuned without touching the projection code.
package rating

import (
	"math"

	"github.com/Dosada05/competition-manager/models"
)

type Config struct {
	// Baseline is the swing for a one-point win.
	Baseline float64
	// Span is added on top of Baseline as the margin grows.
	Span float64
	// Max caps every swing.
	Max int
	// SineScale is the angle reached by a maximal margin.
	SineScale float64
	// RatioDivisor normalizes 1 - loser/(winner-1) before it is clamped to 1.
	RatioDivisor float64

	BlowoutGap             float64
	BlowoutMinOtherResults int
}

func DefaultConfig() Config {
	return Config{
		Baseline:               125,
		Span:                   475,
		Max:                    600,
		SineScale:              0.4 * math.Pi,
		RatioDivisor:           0.5,
		BlowoutGap:             600,
		BlowoutMinOtherResults: 5,
	}
}

type Model struct {
	cfg Config
}

func NewModel(cfg Config) *Model {
	return &Model{cfg: cfg}
}

// Diff is the rating a winner earns over a loser for the given final score.
// Non-wins return 0.
func (m *Model) Diff(winnerScore, loserScore int) int {
	if winnerScore <= loserScore {
		return 0
	}
	if winnerScore-loserScore == 1 {
		return int(m.cfg.Baseline)
	}

	r := float64(loserScore) / float64(winnerScore-1)
	sinArg := math.Min(1, (1-r)/m.cfg.RatioDivisor) * m.cfg.SineScale
	diff := m.cfg.Baseline + m.cfg.Span*math.Sin(sinArg)/math.Sin(m.cfg.SineScale)

	return min(m.cfg.Max, int(math.Round(diff)))
}

// GameRating is the rating a team played at in one game against an opponent rated opponentRating.
func (m *Model) GameRating(opponentRating float64, ownScore, opponentScore int) float64 {
	if ownScore > opponentScore {
		return opponentRating + float64(m.Diff(ownScore, opponentScore))
	}
	return opponentRating - float64(m.Diff(opponentScore, ownScore))
}

// IsBlowout reports whether a heavy favourite's win is lopsided enough to be flagged.
func (m *Model) IsBlowout(winnerRating, loserRating float64, winnerScore, loserScore, winnerOtherResults int) bool {
	return winnerRating-loserRating >= m.cfg.BlowoutGap &&
		winnerScore > 2*loserScore+1 &&
		winnerOtherResults >= m.cfg.BlowoutMinOtherResults
}

type GameEstimate struct {
	MatchupID  string   `json:"matchup_id"`
	OpponentID string   `json:"opponent_id"`
	OwnScore   int      `json:"own_score"`
	OppScore   int      `json:"opponent_score"`
	GameRating *float64 `json:"game_rating"`
	Blowout    bool     `json:"blowout"`
}

// Snapshot is derived on demand and never persisted.
type Snapshot struct {
	TeamID    string         `json:"team_id"`
	PreRating *float64       `json:"pre_rating"`
	Games     []GameEstimate `json:"games"`
	Projected *float64       `json:"projected_rating"`
	Delta     *float64       `json:"rating_delta"`
}

// Project averages the game ratings of every completed game of teamID in which
// both sides have a known pre-rating. Games with an unknown side keep a nil rating
// and are left out of the mean. With no usable game the projection is the pre-rating.
func (m *Model) Project(teamID string, pre map[string]float64, matchups []models.Matchup) Snapshot {
	snap := Snapshot{TeamID: teamID, Games: []GameEstimate{}}
	own, ownKnown := pre[teamID]
	if ownKnown {
		snap.PreRating = &own
	}

	results := resultCounts(matchups)

	var sum float64
	var counted int
	for i := range matchups {
		mu := &matchups[i]
		if !mu.Completed() || !mu.HasBothTeams() || !mu.Involves(teamID) {
			continue
		}
		opponentID, _ := mu.Opponent(teamID)
		ownScore, oppScore, _ := mu.ScoreFor(teamID)

		est := GameEstimate{
			MatchupID:  mu.ID,
			OpponentID: opponentID,
			OwnScore:   ownScore,
			OppScore:   oppScore,
		}

		opp, oppKnown := pre[opponentID]
		if ownKnown && oppKnown {
			gr := m.GameRating(opp, ownScore, oppScore)
			est.GameRating = &gr
			sum += gr
			counted++

			if winner, ok := mu.Winner(); ok {
				loser, _ := mu.Loser()
				ws, ls, _ := mu.ScoreFor(winner)
				est.Blowout = m.IsBlowout(pre[winner], pre[loser], ws, ls, results[winner]-1)
			}
		}
		snap.Games = append(snap.Games, est)
	}

	if counted == 0 {
		snap.Projected = snap.PreRating
	} else {
		projected := sum / float64(counted)
		snap.Projected = &projected
	}
	if snap.PreRating != nil && snap.Projected != nil {
		delta := *snap.Projected - *snap.PreRating
		snap.Delta = &delta
	}
	return snap
}

func (m *Model) ProjectAll(teamIDs []string, pre map[string]float64, matchups []models.Matchup) map[string]Snapshot {
	out := make(map[string]Snapshot, len(teamIDs))
	for _, id := range teamIDs {
		out[id] = m.Project(id, pre, matchups)
	}
	return out
}

// resultCounts counts completed games per team.
func resultCounts(matchups []models.Matchup) map[string]int {
	counts := make(map[string]int)
	for i := range matchups {
		mu := &matchups[i]
		if !mu.Completed() || !mu.HasBothTeams() {
			continue
		}
		counts[*mu.HomeTeamID]++
		counts[*mu.AwayTeamID]++
	}
	return counts
}
