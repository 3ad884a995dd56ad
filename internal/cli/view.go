package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"festquiz/internal/app"
	"festquiz/internal/domain"
)

const lockedStatus = "answers locked, next question…"

// textView renders the quiz as plain text.
type textView struct {
	mu  sync.Mutex
	out io.Writer
}

func newTextView(out io.Writer) *textView {
	return &textView{out: out}
}

func (v *textView) printf(format string, args ...any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, format, args...)
}

func (v *textView) ShowStart() {
	v.printf("\nfestquiz: [s] start  [q] quit\n")
}

func (v *textView) ShowLoading() {
	v.printf("loading questions...\n")
}

func (v *textView) ShowStartError(err error) {
	v.printf("could not start quiz: %v\npress [s] to try again\n", err)
}

func (v *textView) ShowQuestion(q app.RenderedQuestion) {
	var b strings.Builder
	fmt.Fprintf(&b, "\nQuestion %d/%d", q.Index+1, q.Total)
	if q.Difficulty != "" {
		fmt.Fprintf(&b, " (%s)", q.Difficulty)
	}
	fmt.Fprintf(&b, "\n%s\n", q.Text)
	for _, a := range q.Answers {
		fmt.Fprintf(&b, "  %s) %s\n", a.Letter, a.Text)
	}
	b.WriteString("[enter] next  [r] restart  [q] quit\n")
	v.printf("%s", b.String())
}

func (v *textView) ShowLocked(result *domain.LockedResult) {
	var b strings.Builder
	b.WriteString(lockedStatus + "\n")
	if result != nil {
		if result.Right != nil || result.Wrong != nil {
			fmt.Fprintf(&b, "  right: %s\n", joinOrDash(result.Right))
			fmt.Fprintf(&b, "  wrong: %s\n", joinOrDash(result.Wrong))
		} else {
			fmt.Fprintf(&b, "  right: %d  wrong: %d\n", result.RightCount, result.WrongCount)
		}
	}
	v.printf("%s", b.String())
}

func (v *textView) ShowFacit(records []domain.AnsweredRecord) {
	var b strings.Builder
	b.WriteString("\nAnswer key\n")
	writeRecords(&b, records)
	b.WriteString("[r] play again  [q] quit\n")
	v.printf("%s", b.String())
}

func (v *textView) ShowScoreboard(board app.Scoreboard) {
	var b strings.Builder
	fmt.Fprintf(&b, "\nScoreboard %s\n", board.RoomCode)
	if len(board.Entries) == 0 {
		b.WriteString("  no players\n")
	}
	for i, e := range board.Entries {
		fmt.Fprintf(&b, "  %d. %s  %d\n", i+1, e.Name, e.Score)
	}
	b.WriteString("\nAnswer key\n")
	writeRecords(&b, board.Records)
	if len(board.Results) > 0 {
		b.WriteString("\nPer question\n")
		for i, r := range board.Results {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, r.Question)
			fmt.Fprintf(&b, "     right: %s\n", joinOrDash(r.Right))
			fmt.Fprintf(&b, "     wrong: %s\n", joinOrDash(r.Wrong))
		}
	}
	b.WriteString("[r] play again  [q] quit\n")
	v.printf("%s", b.String())
}

func writeRecords(b *strings.Builder, records []domain.AnsweredRecord) {
	for i, r := range records {
		fmt.Fprintf(b, "  %d. %s\n     %s) %s\n", i+1, r.Question, r.CorrectLetter, r.CorrectAnswer)
	}
}

func joinOrDash(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}
