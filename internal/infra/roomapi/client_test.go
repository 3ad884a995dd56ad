package roomapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"festquiz/internal/domain"
)

func TestSnapshotDecodesRoom(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/room/ABCD" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"code":"ABCD","answers_locked":true,"last_result":{"right":2,"wrong":0},"players":{"p1":{"name":"Anna","score":2}}}`))
	}))
	defer server.Close()

	snap, err := NewClient(server.URL).Snapshot(context.Background(), "abcd")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if !snap.AnswersLocked || snap.LastResult.RightCount != 2 || snap.Players[0].ID != "p1" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestSnapshotUnknownRoom(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := NewClient(server.URL).Snapshot(context.Background(), "NOPE")
	if !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected room not found, got %v", err)
	}
}

func TestPublisherPostsQuestion(t *testing.T) {
	var (
		gotRoom string
		got     domain.QuestionBroadcast
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/room/question" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotRoom = r.URL.Query().Get("room")
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"status":"question_set"}`))
	}))
	defer server.Close()

	pub := NewPublisher(NewClient(server.URL), "abcd")
	err := pub.QuestionShown(context.Background(), domain.QuestionBroadcast{
		ID:            "1/3",
		Question:      "2 + 2?",
		Difficulty:    "easy",
		Options:       domain.Options{A: "3", B: "4", C: "5", D: "22"},
		CorrectLetter: "B",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if gotRoom != "ABCD" || got.ID != "1/3" || got.Options.B != "4" || got.CorrectLetter != "B" {
		t.Fatalf("unexpected publish room=%s payload=%+v", gotRoom, got)
	}
}
