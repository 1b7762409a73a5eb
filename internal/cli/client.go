package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GameView mirrors the API's response shape.
type GameView struct {
	State struct {
		ID                          string   `json:"id"`
		Difficulty                  string   `json:"difficulty"`
		Status                      string   `json:"status"`
		VictoryPath                 string   `json:"victory_path,omitempty"`
		CurrentTurn                 int      `json:"current_turn"`
		Users                       int64    `json:"users"`
		Cash                        int64    `json:"cash"`
		Trust                       int      `json:"trust"`
		Infrastructure              []string `json:"infrastructure"`
		HiredStaff                  []string `json:"hired_staff"`
		Consulting                  bool     `json:"consulting"`
		MaxUserCapacity             int64    `json:"max_user_capacity"`
		ConsecutiveCapacityExceeded int      `json:"consecutive_capacity_exceeded"`
		CapacityWarning             bool     `json:"capacity_warning"`
	} `json:"state"`
	Turn *struct {
		Number  int    `json:"number"`
		Title   string `json:"title"`
		Text    string `json:"text"`
		Choices []struct {
			ID       string `json:"id"`
			Text     string `json:"text"`
			Category string `json:"category,omitempty"`
		} `json:"choices"`
	} `json:"turn,omitempty"`
	Event *struct {
		ID       string `json:"id"`
		Kind     string `json:"kind"`
		Severity string `json:"severity,omitempty"`
		Title    string `json:"title"`
		Text     string `json:"text"`
		Choices  []struct {
			ID   string `json:"id"`
			Text string `json:"text"`
		} `json:"choices"`
	} `json:"event,omitempty"`
}

type ScoreView struct {
	GameID string `json:"game_id"`
	Status string `json:"status"`
	Score  int64  `json:"score"`
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) StartGame(ctx context.Context, difficulty string, seed *uint64) (GameView, error) {
	body := map[string]any{"difficulty": difficulty}
	if seed != nil {
		body["seed"] = *seed
	}
	var out GameView
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games", body, &out)
	return out, err
}

func (c *Client) State(ctx context.Context, gameID string) (GameView, error) {
	var out GameView
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/games/"+url.PathEscape(gameID), nil, &out)
	return out, err
}

func (c *Client) SubmitChoices(ctx context.Context, gameID string, choiceIDs []string) (GameView, error) {
	var out GameView
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/choices", map[string]any{
		"choice_ids": choiceIDs,
	}, &out)
	return out, err
}

func (c *Client) SubmitEventChoice(ctx context.Context, gameID, choiceID string) (GameView, error) {
	var out GameView
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/games/"+url.PathEscape(gameID)+"/event-choices", map[string]any{
		"choice_id": choiceID,
	}, &out)
	return out, err
}

func (c *Client) Score(ctx context.Context, gameID string, quizBonus int64) (ScoreView, error) {
	path := fmt.Sprintf("/v1/games/%s/score?quiz_bonus=%d", url.PathEscape(gameID), quizBonus)
	var out ScoreView
	err := c.jsonRequest(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
