package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RoomSnapshot is the server-owned multiplayer round state. The client only reads it.
type RoomSnapshot struct {
	Code          string        `json:"code,omitempty"`
	Phase         string        `json:"phase,omitempty"`
	AnswersLocked bool          `json:"answers_locked"`
	LastResult    *LockedResult `json:"last_result,omitempty"`
	FinalResults  []FinalResult `json:"final_results,omitempty"`
	Players       PlayerList    `json:"players,omitempty"`
}

// LockedResult summarises who got the locked question right. The server sends
// either plain counts or lists of player names; both decode here.
type LockedResult struct {
	RightCount int      `json:"-"`
	WrongCount int      `json:"-"`
	Right      []string `json:"-"`
	Wrong      []string `json:"-"`
}

func (r *LockedResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Right json.RawMessage `json:"right"`
		Wrong json.RawMessage `json:"wrong"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var err error
	if r.Right, r.RightCount, err = decodeTally(raw.Right); err != nil {
		return fmt.Errorf("last_result.right: %w", err)
	}
	if r.Wrong, r.WrongCount, err = decodeTally(raw.Wrong); err != nil {
		return fmt.Errorf("last_result.wrong: %w", err)
	}
	return nil
}

func (r LockedResult) MarshalJSON() ([]byte, error) {
	if r.Right != nil || r.Wrong != nil {
		return json.Marshal(struct {
			Right []string `json:"right"`
			Wrong []string `json:"wrong"`
		}{r.Right, r.Wrong})
	}
	return json.Marshal(struct {
		Right int `json:"right"`
		Wrong int `json:"wrong"`
	}{r.RightCount, r.WrongCount})
}

func decodeTally(raw json.RawMessage) ([]string, int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, 0, nil
	}
	if raw[0] == '[' {
		var names []string
		if err := json.Unmarshal(raw, &names); err != nil {
			return nil, 0, err
		}
		return names, len(names), nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, 0, err
	}
	return nil, n, nil
}

// FinalResult is the per-question outcome of a room round.
type FinalResult struct {
	Question      string   `json:"question"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	CorrectLetter string   `json:"correct_letter,omitempty"`
	Right         []string `json:"right"`
	Wrong         []string `json:"wrong"`
}

// Player is a participant as reported by the room endpoint.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// PlayerList keeps the players in the order the server listed them, which a
// plain map would lose.
type PlayerList []Player

func (l *PlayerList) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*l = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("players: expected object, got %v", tok)
	}

	players := PlayerList{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var p Player
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("players[%s]: %w", key, err)
		}
		if p.ID == "" {
			p.ID = key
		}
		players = append(players, p)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*l = players
	return nil
}

func (l PlayerList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p.ID)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
