/* models.go
 * This file contain the structs that map to documents stored in the db. The bson field names follow the existing
 * collections (apostadores, times, rodadas, palpites, ranking) so data from earlier versions can still be read
 */

package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a document in the apostadores collection
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"nome"`
	Username     string             `bson:"usuario"`
	PasswordHash string             `bson:"senha,omitempty"`
	IsAdmin      bool               `bson:"is_admin"`
	DiscordID    string             `bson:"discord_id,omitempty"`
}

// Team is a document in the times collection. Emblem holds a data URL (data:<mime>;base64,...) or nil
type Team struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Name   string             `bson:"nome"`
	Code   string             `bson:"sigla"`
	Slug   string             `bson:"slug,omitempty"`
	Emblem *string            `bson:"escudo_base64"`
}

// Match is embedded in a Round. Scores are nil until the official result is recorded
type Match struct {
	ID         primitive.ObjectID `bson:"id_jogo"`
	HomeTeamID primitive.ObjectID `bson:"time_casa_id"`
	AwayTeamID primitive.ObjectID `bson:"time_visitante_id"`
	HomeScore  *int               `bson:"placar_casa"`
	AwayScore  *int               `bson:"placar_visitante"`
	Finalized  bool               `bson:"finalizado"`
}

// Round is a document in the rodadas collection. ScoringSince is set while a scoring (or unprocess) pass holds the
// round and cleared when it finishes
type Round struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Number       int                `bson:"numero"`
	Deadline     time.Time          `bson:"data_limite_apostas"`
	Matches      []Match            `bson:"jogos"`
	Processed    bool               `bson:"processada"`
	ScoringSince *time.Time         `bson:"pontuando_desde,omitempty"`
}

// FindMatch returns the match with the given id, matched by identity not position
func (r Round) FindMatch(id primitive.ObjectID) (Match, bool) {
	for _, m := range r.Matches {
		if m.ID == id {
			return m, true
		}
	}
	return Match{}, false
}

// AllFinalized reports whether every match of the round has an official result
func (r Round) AllFinalized() bool {
	for _, m := range r.Matches {
		if !m.Finalized {
			return false
		}
	}
	return true
}

// ReferencesTeam reports whether any match of the round uses the team
func (r Round) ReferencesTeam(teamID primitive.ObjectID) bool {
	for _, m := range r.Matches {
		if m.HomeTeamID == teamID || m.AwayTeamID == teamID {
			return true
		}
	}
	return false
}

// PredictionEntry is one guessed score inside a Prediction
type PredictionEntry struct {
	MatchID   primitive.ObjectID `bson:"id_jogo"`
	HomeScore *int               `bson:"placar_casa"`
	AwayScore *int               `bson:"placar_visitante"`
}

// Prediction is a document in the palpites collection, one per (user, round)
type Prediction struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"usuario_id"`
	RoundID   primitive.ObjectID `bson:"rodada_id"`
	Entries   []PredictionEntry  `bson:"palpites"`
	CreatedAt time.Time          `bson:"data_criacao"`
}

// FindEntry returns the entry for the given match
func (p Prediction) FindEntry(matchID primitive.ObjectID) (PredictionEntry, bool) {
	for _, e := range p.Entries {
		if e.MatchID == matchID {
			return e, true
		}
	}
	return PredictionEntry{}, false
}

// ScoreRecord is a document in the ranking collection, one per (user, round)
type ScoreRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      primitive.ObjectID `bson:"usuario_id"`
	RoundID     primitive.ObjectID `bson:"rodada_id"`
	TotalPoints int                `bson:"pontuacao_total"`
	ComputedAt  time.Time          `bson:"data_calculo"`
}
