package brackets

import "github.com/Dosada05/competition-manager/models"

// Advance moves the winner of a completed bracket game into the next round.
// It reports whether a slot was written. A final (round 1), a tie, or a bracket
// with no slot waiting on this game are all no-ops.
func Advance(matchups []models.Matchup, completed *models.Matchup) bool {
	winner, ok := completed.Winner()
	if !ok {
		return false
	}
	return AdvanceWinner(matchups, completed, winner)
}

// AdvanceWinner writes teamID into the next-round slot labelled W{source.Position}.
// Slots are found by label, never by index. Writing the same team twice leaves the
// bracket unchanged.
func AdvanceWinner(matchups []models.Matchup, source *models.Matchup, teamID string) bool {
	if source.Round <= 1 {
		return false
	}
	label := models.WinnerOf(source.Position)

	for i := range matchups {
		target := &matchups[i]
		if target.Round != source.Round-1 {
			continue
		}

		switch {
		case target.HomeSeed.Equal(label):
			target.HomeTeamID = teamRef(teamID)
		case target.AwaySeed.Equal(label):
			target.AwayTeamID = teamRef(teamID)
		default:
			continue
		}

		if target.Status == models.MatchupPending && target.HasBothTeams() {
			target.Status = models.MatchupScheduled
		}
		// a bye with a single feeder passes the team straight through
		if target.Status == models.MatchupBye && (target.HomeSeed == nil) != (target.AwaySeed == nil) {
			AdvanceWinner(matchups, target, teamID)
		}
		return true
	}
	return false
}

// Champion returns the winner of the completed final, if any.
func Champion(matchups []models.Matchup) (string, bool) {
	for i := range matchups {
		if matchups[i].Round == 1 {
			return matchups[i].Winner()
		}
	}
	return "", false
}

// Rounds groups bracket matchups by round number, first round first.
func Rounds(matchups []models.Matchup) [][]models.Matchup {
	maxRound := 0
	for _, m := range matchups {
		if m.Round > maxRound {
			maxRound = m.Round
		}
	}
	out := make([][]models.Matchup, 0, maxRound)
	for r := maxRound; r >= 1; r-- {
		round := make([]models.Matchup, 0)
		for _, m := range matchups {
			if m.Round == r {
				round = append(round, m)
			}
		}
		out = append(out, round)
	}
	return out
}
