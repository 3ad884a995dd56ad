package app

import (
	"fmt"
	"math/rand"

	"festquiz/internal/domain"
	"github.com/jonboulle/clockwork"
)

// LetteredAnswer is one displayed answer option.
type LetteredAnswer struct {
	Letter string
	Text   string
}

// RenderedQuestion is what the view needs to display the current question.
type RenderedQuestion struct {
	Index      int
	Total      int
	Text       string
	Difficulty string
	Answers    []LetteredAnswer
}

// Session is the state of one quiz run, from a successful fetch until restart.
// It is owned by the Controller and only touched under the controller mutex.
type Session struct {
	query     domain.Query
	questions []domain.Question
	index     int
	results   []domain.AnsweredRecord
	mode      domain.Mode

	// round increments every time a question is shown; background callbacks
	// carry the round they were armed for and are ignored once it moves on.
	round         uint64
	triggered     bool
	answers       []LetteredAnswer
	correctLetter string
	lastSentID    string
	pending       clockwork.Timer
}

func newSession(query domain.Query, questions []domain.Question) *Session {
	return &Session{
		query:     query,
		questions: questions,
		results:   make([]domain.AnsweredRecord, 0, len(questions)),
		mode:      domain.ModeQuiz,
	}
}

// finished reports whether every question has been passed.
func (s *Session) finished() bool {
	return s.index >= len(s.questions)
}

// skipMalformed moves past entries that cannot be shown and returns how many were skipped.
func (s *Session) skipMalformed() int {
	skipped := 0
	for !s.finished() && !s.questions[s.index].Valid() {
		s.index++
		skipped++
	}
	return skipped
}

// render shuffles the current question and starts a new round for it.
func (s *Session) render(rnd *rand.Rand) RenderedQuestion {
	q := s.questions[s.index]
	s.answers, s.correctLetter = ShuffleAnswers(rnd, q)
	s.round++
	s.triggered = false
	s.mode = domain.ModeQuiz
	s.pending = nil

	answers := make([]LetteredAnswer, len(s.answers))
	copy(answers, s.answers)
	return RenderedQuestion{
		Index:      s.index,
		Total:      len(s.questions),
		Text:       q.Text,
		Difficulty: q.Difficulty,
		Answers:    answers,
	}
}

// record appends the outcome of the current question and moves to the next one.
func (s *Session) record() {
	q := s.questions[s.index]
	s.results = append(s.results, domain.AnsweredRecord{
		Question:      q.Text,
		CorrectAnswer: q.CorrectAnswer,
		CorrectLetter: s.correctLetter,
	})
	s.index++
	s.answers = nil
	s.correctLetter = ""
}

// broadcast builds the observer payload for the current rendering. It reports
// false when the same question ID was already sent last.
func (s *Session) broadcast(selectedDifficulty string) (domain.QuestionBroadcast, bool) {
	id := fmt.Sprintf("%d/%d", s.index+1, len(s.questions))
	if id == s.lastSentID {
		return domain.QuestionBroadcast{}, false
	}
	s.lastSentID = id

	q := s.questions[s.index]
	difficulty := selectedDifficulty
	if difficulty == "" {
		difficulty = q.Difficulty
	}
	if difficulty == "" {
		difficulty = "medium"
	}

	var opts [4]string
	for i := 0; i < len(s.answers) && i < len(opts); i++ {
		opts[i] = s.answers[i].Text
	}
	return domain.QuestionBroadcast{
		ID:            id,
		Question:      q.Text,
		Difficulty:    difficulty,
		Options:       domain.Options{A: opts[0], B: opts[1], C: opts[2], D: opts[3]},
		CorrectLetter: s.correctLetter,
	}, true
}

func (s *Session) resultsCopy() []domain.AnsweredRecord {
	out := make([]domain.AnsweredRecord, len(s.results))
	copy(out, s.results)
	return out
}

// ShuffleAnswers returns the correct and incorrect answers in random order,
// lettered from A, along with the letter the correct answer landed on. The
// letter follows the correct answer's position, not its text, so duplicate
// answer strings cannot confuse it.
func ShuffleAnswers(rnd *rand.Rand, q domain.Question) ([]LetteredAnswer, string) {
	all := make([]string, 0, len(q.IncorrectAnswers)+1)
	all = append(all, q.CorrectAnswer)
	all = append(all, q.IncorrectAnswers...)

	perm := rnd.Perm(len(all))
	answers := make([]LetteredAnswer, len(all))
	correct := ""
	for i, src := range perm {
		answers[i] = LetteredAnswer{Letter: Letter(i), Text: all[src]}
		if src == 0 {
			correct = answers[i].Letter
		}
	}
	return answers, correct
}

// Letter maps a zero-based option position to its label.
func Letter(i int) string {
	return string(rune('A' + i))
}
