package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Ranveer112/valens/internal/models"
	"github.com/Ranveer112/valens/internal/storage"
)

// HTTPClient implements DataSource by calling the Valens REST API.
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

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	body, err := c.get(ctx, "/api/v1/exercises", nil)
	if err != nil {
		return nil, err
	}

	var exercises []models.Exercise
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return exercises, nil
}

func (c *HTTPClient) ListRoutines(ctx context.Context) ([]models.Routine, error) {
	body, err := c.get(ctx, "/api/v1/routines", nil)
	if err != nil {
		return nil, err
	}

	var routines []models.Routine
	if err := json.Unmarshal(body, &routines); err != nil {
		return nil, fmt.Errorf("httpclient: decode routines: %w", err)
	}
	return routines, nil
}

func (c *HTTPClient) ListTrainingSessions(ctx context.Context) ([]models.TrainingSession, error) {
	body, err := c.get(ctx, "/api/v1/sessions", nil)
	if err != nil {
		return nil, err
	}

	var sessions []models.TrainingSession
	if err := json.Unmarshal(body, &sessions); err != nil {
		return nil, fmt.Errorf("httpclient: decode sessions: %w", err)
	}
	return sessions, nil
}

func (c *HTTPClient) GetTrainingSession(ctx context.Context, id uint32) (*models.TrainingSession, error) {
	body, err := c.get(ctx, "/api/v1/sessions/"+strconv.FormatUint(uint64(id), 10), nil)
	if err != nil {
		return nil, err
	}

	var session models.TrainingSession
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("httpclient: decode session: %w", err)
	}
	return &session, nil
}

// OngoingSession reads the guide endpoint. The guide snapshot is a superset
// of the ongoing-session record, so the shared fields decode directly; a 404
// means no guide is running.
func (c *HTTPClient) OngoingSession(ctx context.Context) (*models.OngoingSession, error) {
	body, err := c.get(ctx, "/api/v1/guide", nil)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var rec models.OngoingSession
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("httpclient: decode ongoing session: %w", err)
	}
	return &rec, nil
}
