package quizapi

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/url"
	"strconv"

	"festquiz/internal/domain"
	"festquiz/internal/infra/httpclient"
	"github.com/rs/zerolog/log"
)

// Client fetches question batches from the quiz API.
type Client struct {
	*httpclient.BaseClient
}

func NewClient(baseURL string) *Client {
	return &Client{BaseClient: httpclient.NewBaseClient(baseURL)}
}

// FetchQuestions calls GET /quiz with the query's parameters.
func (c *Client) FetchQuestions(ctx context.Context, query domain.Query) ([]domain.Question, error) {
	params := url.Values{}
	if query.Amount > 0 {
		params.Set("amount", strconv.Itoa(query.Amount))
	}
	if query.Category != "" {
		params.Set("category", query.Category)
	}
	if query.Difficulty != "" {
		params.Set("difficulty", query.Difficulty)
	}
	endpoint := "/quiz"
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	var questions []domain.Question
	if err := json.Unmarshal(body, &questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	log.Debug().Int("count", len(questions)).Str("endpoint", endpoint).Msg("questions fetched")
	return questions, nil
}

// Category IDs offered by the start screen.
var (
	CategoryIDs       = []string{"9", "11", "12", "21", "15", "23", "17", "22"}
	ModernCategoryIDs = []string{"11", "12", "15", "9", "17"}
)

// ResolveCategory expands the "random" and "modern" presets to a concrete
// category ID. Any other value is returned unchanged.
func ResolveCategory(rnd *rand.Rand, category string) string {
	switch category {
	case "random":
		return CategoryIDs[rnd.Intn(len(CategoryIDs))]
	case "modern":
		return ModernCategoryIDs[rnd.Intn(len(ModernCategoryIDs))]
	default:
		return category
	}
}
