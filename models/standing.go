package models

// StandingRecord is one team's tally inside a pool.
type StandingRecord struct {
	Wins          int `json:"wins"`
	Losses        int `json:"losses"`
	Ties          int `json:"ties"`
	PointsFor     int `json:"points_for"`
	PointsAgainst int `json:"points_against"`
	PointDiff     int `json:"point_diff"`
}

func (r StandingRecord) GamesPlayed() int {
	return r.Wins + r.Losses + r.Ties
}

// CombinedRecord splits a team's totals into regular (pool) and tournament (bracket) results.
type CombinedRecord struct {
	StandingRecord
	RegularWins      int `json:"regular_wins"`
	RegularLosses    int `json:"regular_losses"`
	TournamentWins   int `json:"tournament_wins"`
	TournamentLosses int `json:"tournament_losses"`
}
