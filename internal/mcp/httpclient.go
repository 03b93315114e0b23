package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/catalog"
	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/progression"
	"github.com/claude/liftlog/internal/storage"
)

// HTTPClient implements DataSource by calling the LiftLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func programParams(programID string) url.Values {
	v := url.Values{}
	v.Set("program_id", programID)
	return v
}

func (c *HTTPClient) ListPRs(ctx context.Context, programID string) (map[string]map[string]models.PRRecord, error) {
	body, err := c.get(ctx, "/api/v1/prs", programParams(programID))
	if err != nil {
		return nil, err
	}

	var records map[string]map[string]models.PRRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("httpclient: decode prs: %w", err)
	}
	return records, nil
}

func (c *HTTPClient) GetPRs(ctx context.Context, programID, exerciseID string) (map[string]models.PRRecord, error) {
	params := programParams(programID)
	params.Set("exercise_id", exerciseID)

	body, err := c.get(ctx, "/api/v1/prs", params)
	if err != nil {
		return nil, err
	}

	var records map[string]models.PRRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("httpclient: decode prs: %w", err)
	}
	return records, nil
}

func (c *HTTPClient) ExerciseHistory(ctx context.Context, programID, exerciseID string) ([]storage.SetHistoryRow, error) {
	params := programParams(programID)
	params.Set("exercise_id", exerciseID)

	body, err := c.get(ctx, "/api/v1/sets/history", params)
	if err != nil {
		return nil, err
	}

	var rows []storage.SetHistoryRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode set history: %w", err)
	}
	return rows, nil
}

func (c *HTTPClient) Suggestion(ctx context.Context, programID, exerciseID string) (*progression.Suggestion, error) {
	params := programParams(programID)
	params.Set("exercise_id", exerciseID)

	body, err := c.get(ctx, "/api/v1/suggestions", params)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Suggestion *progression.Suggestion `json:"suggestion"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("httpclient: decode suggestion: %w", err)
	}
	return wrapper.Suggestion, nil
}

func (c *HTTPClient) Exercises(ctx context.Context) ([]catalog.Exercise, error) {
	body, err := c.get(ctx, "/api/v1/exercises", nil)
	if err != nil {
		return nil, err
	}

	var exercises []catalog.Exercise
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return exercises, nil
}

func (c *HTTPClient) RecentWorkouts(ctx context.Context, programID string, limit int) ([]models.Workout, error) {
	params := programParams(programID)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, "/api/v1/workouts", params)
	if err != nil {
		return nil, err
	}

	var workouts []models.Workout
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return workouts, nil
}
