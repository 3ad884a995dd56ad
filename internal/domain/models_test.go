package domain

import (
	"encoding/json"
	"testing"
)

func TestQuestionDecodeTolerant(t *testing.T) {
	payload := `[
		{"question":"Q1","correct_answer":"a","incorrect_answers":["b","c","d"],"difficulty":"easy"},
		{"question":"Q2","correct_answer":"a","incorrect_answers":"b"},
		{"question":"Q3","correct_answer":"a"}
	]`
	var questions []Question
	if err := json.Unmarshal([]byte(payload), &questions); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(questions))
	}
	if !questions[0].Valid() || questions[0].Difficulty != "easy" || len(questions[0].IncorrectAnswers) != 3 {
		t.Fatalf("unexpected first question %+v", questions[0])
	}
	if questions[1].Valid() || questions[2].Valid() {
		t.Fatalf("expected malformed entries to be invalid: %+v %+v", questions[1], questions[2])
	}
}

func TestLockedResultShapes(t *testing.T) {
	var counts LockedResult
	if err := json.Unmarshal([]byte(`{"right":3,"wrong":1}`), &counts); err != nil {
		t.Fatalf("unmarshal counts: %v", err)
	}
	if counts.RightCount != 3 || counts.WrongCount != 1 || counts.Right != nil {
		t.Fatalf("unexpected counts %+v", counts)
	}

	var names LockedResult
	if err := json.Unmarshal([]byte(`{"right":["Anna","Bo"],"wrong":[]}`), &names); err != nil {
		t.Fatalf("unmarshal names: %v", err)
	}
	if names.RightCount != 2 || names.WrongCount != 0 || names.Right[1] != "Bo" {
		t.Fatalf("unexpected names %+v", names)
	}

	if err := json.Unmarshal([]byte(`{"right":"many"}`), &names); err == nil {
		t.Fatalf("expected error for string tally")
	}
}

func TestRoomSnapshotDecode(t *testing.T) {
	payload := `{
		"code":"ABCD","phase":"locked","answers_locked":true,
		"last_result":{"right":["Anna"],"wrong":["Bo"]},
		"players":{"b2":{"id":"b2","name":"Bo","score":1},"a1":{"name":"Anna","score":4}},
		"final_results":[{"question":"Q1","correct_letter":"C","right":["Anna"],"wrong":["Bo"]}]
	}`
	var snap RoomSnapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !snap.AnswersLocked || snap.LastResult == nil || snap.LastResult.RightCount != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if len(snap.Players) != 2 || snap.Players[0].Name != "Bo" || snap.Players[1].ID != "a1" {
		t.Fatalf("expected players in listed order, got %+v", snap.Players)
	}
	if len(snap.FinalResults) != 1 || snap.FinalResults[0].CorrectLetter != "C" {
		t.Fatalf("unexpected final results %+v", snap.FinalResults)
	}
}

func TestPlayerListMarshalKeepsOrder(t *testing.T) {
	players := PlayerList{{ID: "z", Name: "Zed", Score: 1}, {ID: "a", Name: "Ada", Score: 2}}
	data, err := json.Marshal(players)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded PlayerList
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded[0].ID != "z" || decoded[1].Name != "Ada" {
		t.Fatalf("order not preserved: %s", data)
	}
}
