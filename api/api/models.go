/* models.go
 * This file contain the input and view structs used by api consumers. Views carry json tags because the web
 * front-end returns them as they are
 */

package api

import (
	"time"

	"bolao-bot/api/logic"
)

// TeamInput is the data an admin submits for a team. Emblem is the raw image, EmblemType its MIME type (sniffed when
// blank)
type TeamInput struct {
	Name       string
	Code       string
	Emblem     []byte
	EmblemType string
}

// PairInput is one match of a new round. Home and Away are team references: an id, a code or a name
type PairInput struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

// RoundInput is the data an admin submits to create a round
type RoundInput struct {
	Number   int
	Deadline time.Time
	Pairs    []PairInput
}

// ScoreEntry is a typed home/away score for one match, used for both predictions and official results
type ScoreEntry struct {
	MatchID string `json:"match_id"`
	Home    string `json:"home"`
	Away    string `json:"away"`
}

// TeamView is a team as shown to users
type TeamView struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Code   string  `json:"code"`
	Emblem *string `json:"emblem,omitempty"`
}

// TeamRef is the short form of a team used inside matches
type TeamRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// MatchView is a match with its team names resolved
type MatchView struct {
	ID        string  `json:"id"`
	Home      TeamRef `json:"home"`
	Away      TeamRef `json:"away"`
	HomeScore *int    `json:"home_score"`
	AwayScore *int    `json:"away_score"`
	Finalized bool    `json:"finalized"`
}

// RoundView is a round annotated with the phase it is in right now
type RoundView struct {
	ID           string      `json:"id"`
	Number       int         `json:"number"`
	Deadline     time.Time   `json:"deadline"`
	DeadlineText string      `json:"deadline_text"`
	Phase        logic.Phase `json:"phase"`
	Processed    bool        `json:"processed"`
	Matches      []MatchView `json:"matches"`
}

// PredictionEntryView is one guessed score with the match's teams
type PredictionEntryView struct {
	MatchID   string  `json:"match_id"`
	Home      TeamRef `json:"home"`
	Away      TeamRef `json:"away"`
	HomeScore *int    `json:"home_score"`
	AwayScore *int    `json:"away_score"`
}

// PredictionView is a stored prediction joined with its round
type PredictionView struct {
	RoundID     string                `json:"round_id"`
	RoundNumber int                   `json:"round_number"`
	Deadline    time.Time             `json:"deadline"`
	UserName    string                `json:"user_name,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	Entries     []PredictionEntryView `json:"entries"`
}

// BettingStatusEntry tells an admin whether a user has bet on the open round
type BettingStatusEntry struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	HasBet   bool   `json:"has_bet"`
}

// BettingStatus is the open round and who has bet on it
type BettingStatus struct {
	Round RoundView            `json:"round"`
	Users []BettingStatusEntry `json:"users"`
}

// LeaderboardEntry is one line of the overall ranking
type LeaderboardEntry struct {
	Position    int    `json:"position"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	TotalPoints int    `json:"total_points"`
	Rounds      int    `json:"rounds"`
}

// HistoryMatch shows how one match of a scored round was scored for the user
type HistoryMatch struct {
	MatchID       string  `json:"match_id"`
	Home          TeamRef `json:"home"`
	Away          TeamRef `json:"away"`
	OfficialHome  *int    `json:"official_home"`
	OfficialAway  *int    `json:"official_away"`
	PredictedHome *int    `json:"predicted_home"`
	PredictedAway *int    `json:"predicted_away"`
	Points        int     `json:"points"`
}

// HistoryEntry is one scored round of a user's history
type HistoryEntry struct {
	RoundID     string         `json:"round_id"`
	RoundNumber int            `json:"round_number"`
	TotalPoints int            `json:"total_points"`
	ComputedAt  time.Time      `json:"computed_at"`
	Matches     []HistoryMatch `json:"matches"`
}

// ResultsSummary reports how many matches of a round have an official result after RecordResults
type ResultsSummary struct {
	Finalized int `json:"finalized"`
	Total     int `json:"total"`
}

// ScoreSummary reports the outcome of a scoring pass
type ScoreSummary struct {
	RoundNumber int `json:"round_number"`
	Scored      int `json:"scored"`
}
