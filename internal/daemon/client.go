package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/theirongolddev/ascendia/internal/pet"
)

// Client talks to a running daemon so that other processes change the pet
// through the daemon's engine instead of writing the store underneath it.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a client for the daemon listening on addr (host:port).
func NewClient(addr string) *Client {
	return &Client{
		base: "http://" + addr,
		http: &http.Client{Timeout: 5 * time.Second},
	}
}

// Status fetches /v1/status.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	err := c.do(ctx, http.MethodGet, "/v1/status", nil, &st)
	return st, err
}

// EventsSince returns buffered events with an ID above since.
func (c *Client) EventsSince(ctx context.Context, since int64) ([]Event, error) {
	var events []Event
	err := c.do(ctx, http.MethodGet, "/v1/events?since="+strconv.FormatInt(since, 10), nil, &events)
	return events, err
}

// Pet fetches the current profile.
func (c *Client) Pet(ctx context.Context) (PetResponse, error) {
	return c.pet(ctx, http.MethodGet, "/v1/pet", nil)
}

func (c *Client) GainXP(ctx context.Context, amount int, silent bool) (PetResponse, error) {
	return c.pet(ctx, http.MethodPost, "/v1/pet/xp", xpRequest{Amount: amount, Silent: silent})
}

func (c *Client) UpdateStat(ctx context.Context, stat pet.Stat, amount int) (PetResponse, error) {
	return c.pet(ctx, http.MethodPost, "/v1/pet/stat", statRequest{Stat: stat, Amount: amount})
}

func (c *Client) Feed(ctx context.Context, cost int) (PetResponse, error) {
	return c.pet(ctx, http.MethodPost, "/v1/pet/feed", feedRequest{Cost: cost})
}

func (c *Client) Play(ctx context.Context) (PetResponse, error) {
	return c.pet(ctx, http.MethodPost, "/v1/pet/play", nil)
}

func (c *Client) Rename(ctx context.Context, name string) (PetResponse, error) {
	return c.pet(ctx, http.MethodPost, "/v1/pet/rename", renameRequest{Name: name})
}

func (c *Client) SetType(ctx context.Context, t pet.Type) (PetResponse, error) {
	return c.pet(ctx, http.MethodPost, "/v1/pet/type", typeRequest{Type: t})
}

func (c *Client) RewardTreats(ctx context.Context, amount int, reason string) (PetResponse, error) {
	return c.pet(ctx, http.MethodPost, "/v1/pet/treats", treatsRequest{Amount: amount, Reason: reason})
}

func (c *Client) Event(ctx context.Context, ev pet.Event, data pet.EventData) (PetResponse, error) {
	return c.pet(ctx, http.MethodPost, "/v1/pet/events", eventRequest{Event: string(ev), EventData: data})
}

func (c *Client) Reset(ctx context.Context) (PetResponse, error) {
	return c.pet(ctx, http.MethodPost, "/v1/pet/reset", nil)
}

func (c *Client) pet(ctx context.Context, method, path string, body any) (PetResponse, error) {
	var resp PetResponse
	err := c.do(ctx, method, path, body, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s", apiErr.Error)
		}
		return fmt.Errorf("daemon: HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
