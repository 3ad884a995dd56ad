package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

// Question is a single multiple-choice trivia question as served by the quiz API.
type Question struct {
	Text             string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
	Difficulty       string   `json:"difficulty,omitempty"`
}

// UnmarshalJSON tolerates a non-array incorrect_answers by leaving it nil,
// so one bad entry does not fail the whole batch.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw struct {
		Text             string          `json:"question"`
		CorrectAnswer    string          `json:"correct_answer"`
		IncorrectAnswers json.RawMessage `json:"incorrect_answers"`
		Difficulty       string          `json:"difficulty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.Text = raw.Text
	q.CorrectAnswer = raw.CorrectAnswer
	q.Difficulty = raw.Difficulty
	q.IncorrectAnswers = nil

	var incorrect []string
	if len(raw.IncorrectAnswers) > 0 && json.Unmarshal(raw.IncorrectAnswers, &incorrect) == nil && incorrect != nil {
		q.IncorrectAnswers = incorrect
	}
	return nil
}

// Valid reports whether the question can be shown.
func (q Question) Valid() bool {
	return q.CorrectAnswer != "" && q.IncorrectAnswers != nil
}

// AnsweredRecord is one line of the answer key, appended when advancing past a question.
type AnsweredRecord struct {
	Question      string `json:"question"`
	CorrectAnswer string `json:"correct_answer"`
	CorrectLetter string `json:"correct_letter"`
}

// Mode governs which polling/rendering behavior is active for a session.
type Mode int

const (
	ModeQuiz Mode = iota
	ModeLocked
	ModeScoreboard
	ModeFacit
)

func (m Mode) String() string {
	switch m {
	case ModeQuiz:
		return "quiz"
	case ModeLocked:
		return "locked"
	case ModeScoreboard:
		return "scoreboard"
	case ModeFacit:
		return "facit"
	default:
		return "unknown"
	}
}

// Query selects which questions to fetch. Empty fields are left to the API's defaults.
type Query struct {
	Amount     int    `json:"amount"`
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

// Key identifies the query in caches.
func (q Query) Key() string {
	return strconv.Itoa(q.Amount) + ":" + q.Category + ":" + q.Difficulty
}

// Options holds the lettered answers of a rendered question.
type Options struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

// QuestionBroadcast is sent to observers once per shown question.
type QuestionBroadcast struct {
	ID            string  `json:"id"`
	Question      string  `json:"question"`
	Difficulty    string  `json:"difficulty"`
	Options       Options `json:"options"`
	CorrectLetter string  `json:"correct_letter"`
}

// ScoreEntry is a single scoreboard row.
type ScoreEntry struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

// Facit is the archived outcome of a finished session.
type Facit struct {
	ID           string           `json:"id"`
	RoomCode     string           `json:"roomCode,omitempty"`
	Query        Query            `json:"query"`
	Records      []AnsweredRecord `json:"records"`
	FinalResults []FinalResult    `json:"finalResults,omitempty"`
	Scoreboard   []ScoreEntry     `json:"scoreboard,omitempty"`
	FinishedAt   time.Time        `json:"finishedAt"`
}
