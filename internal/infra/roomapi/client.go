package roomapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"festquiz/internal/domain"
	"festquiz/internal/infra/httpclient"
)

// Client reads room state from the room endpoint.
type Client struct {
	*httpclient.BaseClient
}

func NewClient(baseURL string) *Client {
	return &Client{BaseClient: httpclient.NewBaseClient(baseURL)}
}

// Snapshot fetches GET /room/{code}.
func (c *Client) Snapshot(ctx context.Context, code string) (domain.RoomSnapshot, error) {
	code = strings.ToUpper(code)
	body, err := c.Get(ctx, "/room/"+url.PathEscape(code))
	if err != nil {
		if httpclient.IsStatus(err, http.StatusNotFound) {
			return domain.RoomSnapshot{}, fmt.Errorf("%w: %s", domain.ErrRoomNotFound, code)
		}
		return domain.RoomSnapshot{}, err
	}
	var snap domain.RoomSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return domain.RoomSnapshot{}, fmt.Errorf("decode room %s: %w", code, err)
	}
	return snap, nil
}

// Publisher pushes every shown question to the room so players can answer it.
type Publisher struct {
	client *Client
	code   string
}

func NewPublisher(client *Client, code string) *Publisher {
	return &Publisher{client: client, code: strings.ToUpper(code)}
}

// QuestionShown posts the broadcast to POST /room/question?room={code}.
func (p *Publisher) QuestionShown(ctx context.Context, b domain.QuestionBroadcast) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return err
	}
	endpoint := "/room/question?" + url.Values{"room": {p.code}}.Encode()
	if _, err := p.client.Post(ctx, endpoint, bytes.NewReader(payload)); err != nil {
		return fmt.Errorf("publish question %s: %w", b.ID, err)
	}
	return nil
}
