// Package api is the HTTP client for the fitness backend consumed by the mini app.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/fitgram/pkg/models"
)

// InitDataHeader carries the host identity token on every request
const InitDataHeader = "X-Telegram-Init-Data"

// ErrTransient marks failures that callers are expected to absorb with
// fallback data: network errors, non-2xx statuses and undecodable bodies.
var ErrTransient = errors.New("api: transient fetch failure")

// StatusError is returned for non-2xx responses
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request %s failed: %d", e.Path, e.Code)
}

func (e *StatusError) Unwrap() error { return ErrTransient }

// IdentityFunc supplies the identity token at request time
type IdentityFunc func() string

// Client talks to /api/exercises and /api/profile
type Client struct {
	baseURL  string
	http     *http.Client
	identity IdentityFunc
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient creates a client for baseURL. identity may be nil, in which case
// requests carry an empty token.
func NewClient(baseURL string, identity IdentityFunc, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 10 * time.Second},
		identity: identity,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Exercises returns the flat exercise list. Servers that answer with the
// grouped shape are flattened in group order.
func (c *Client) Exercises(ctx context.Context) ([]models.Exercise, error) {
	body, err := c.get(ctx, "/api/exercises")
	if err != nil {
		return nil, err
	}
	return decodeExercises(body)
}

// Exercise returns a single exercise by id
func (c *Client) Exercise(ctx context.Context, id int64) (models.Exercise, error) {
	body, err := c.get(ctx, "/api/exercises/"+strconv.FormatInt(id, 10))
	if err != nil {
		return models.Exercise{}, err
	}

	var exercise models.Exercise
	if err := json.Unmarshal(body, &exercise); err != nil {
		return models.Exercise{}, fmt.Errorf("decode exercise: %v: %w", err, ErrTransient)
	}
	return exercise, nil
}

// Profile returns the stats snapshot of the current user
func (c *Client) Profile(ctx context.Context) (models.Profile, error) {
	body, err := c.get(ctx, "/api/profile")
	if err != nil {
		return models.Profile{}, err
	}
	return decodeProfile(body)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}

	token := ""
	if c.identity != nil {
		token = c.identity()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(InitDataHeader, token)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("request %s: %v: %w", path, err, ErrTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Path: path, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %v: %w", path, err, ErrTransient)
	}
	return body, nil
}

// decodeExercises accepts both a flat list and a list of {group, exercises}
func decodeExercises(body []byte) ([]models.Exercise, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var probe []map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, fmt.Errorf("decode exercises: %v: %w", err, ErrTransient)
	}

	grouped := len(probe) > 0
	for _, item := range probe {
		if _, ok := item["exercises"]; !ok {
			grouped = false
			break
		}
	}

	if grouped {
		var groups []models.ExerciseGroup
		if err := json.Unmarshal(trimmed, &groups); err != nil {
			return nil, fmt.Errorf("decode exercise groups: %v: %w", err, ErrTransient)
		}
		var list []models.Exercise
		for _, g := range groups {
			list = append(list, g.Exercises...)
		}
		return list, nil
	}

	var list []models.Exercise
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, fmt.Errorf("decode exercises: %v: %w", err, ErrTransient)
	}
	return list, nil
}

// profileWire covers the current profile shape and the older one that used
// first_name/workouts_completed/telegram_id.
type profileWire struct {
	Name              string `json:"name"`
	TotalWorkouts     *int   `json:"total_workouts"`
	StreakCount       int    `json:"streak_count"`
	TelegramUserID    int64  `json:"telegram_user_id"`
	FirstName         string `json:"first_name"`
	WorkoutsCompleted int    `json:"workouts_completed"`
	TelegramID        int64  `json:"telegram_id"`
}

func decodeProfile(body []byte) (models.Profile, error) {
	var w profileWire
	if err := json.Unmarshal(body, &w); err != nil {
		return models.Profile{}, fmt.Errorf("decode profile: %v: %w", err, ErrTransient)
	}

	p := models.Profile{
		Name:           w.Name,
		StreakCount:    w.StreakCount,
		TelegramUserID: w.TelegramUserID,
	}
	if p.Name == "" {
		p.Name = w.FirstName
	}
	if w.TotalWorkouts != nil {
		p.TotalWorkouts = *w.TotalWorkouts
	} else {
		p.TotalWorkouts = w.WorkoutsCompleted
	}
	if p.TelegramUserID == 0 {
		p.TelegramUserID = w.TelegramID
	}
	if p.TotalWorkouts < 0 {
		p.TotalWorkouts = 0
	}
	if p.StreakCount < 0 {
		p.StreakCount = 0
	}
	return p, nil
}
