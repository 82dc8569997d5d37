package frcapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/frc4915/scoutshift/internal/config"
)

// ScheduledMatch is a single match as returned by the FIRST Events API.
type ScheduledMatch struct {
	Description     string      `json:"description"`
	MatchNumber     int         `json:"matchNumber"`
	StartTime       string      `json:"startTime"`
	TournamentLevel string      `json:"tournamentLevel"`
	Teams           []MatchTeam `json:"teams"`
}

// MatchTeam names one competing team and its alliance station.
type MatchTeam struct {
	TeamNumber int    `json:"teamNumber"`
	Station    string `json:"station"`
	Surrogate  bool   `json:"surrogate"`
}

// ScheduleResponse is the raw schedule payload. The same shape is written
// to and read from the on-disk cache, so a cached snapshot is
// interchangeable with a fresh fetch.
type ScheduleResponse struct {
	Schedule []ScheduledMatch `json:"Schedule"`
}

// Client fetches event schedules from the FIRST Events API v3.
type Client struct {
	http    *http.Client
	baseURL string
	creds   config.Credentials
}

// NewClient creates an API client for the given base URL and credentials.
func NewClient(baseURL string, creds config.Credentials) *Client {
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: baseURL,
		creds:   creds,
	}
}

// FetchSchedule retrieves the match schedule for an event at the given
// tournament level.
func (c *Client) FetchSchedule(ctx context.Context, season int, eventCode, level string) (*ScheduleResponse, error) {
	u := fmt.Sprintf("%s/%d/schedule/%s?tournamentLevel=%s",
		c.baseURL, season, url.PathEscape(eventCode), url.QueryEscape(level))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.creds.Username, c.creds.Password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching schedule: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetching schedule: unexpected status %d: %s", resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var schedule ScheduleResponse
	if err := json.Unmarshal(body, &schedule); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &schedule, nil
}
