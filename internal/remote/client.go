// Package remote implements the HTTP client for the script endpoint backing
// all panels. The endpoint multiplexes every operation over GET/POST requests
// against a single URL, dispatching on target/action query parameters.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/vdhoang/botui/internal/apperr"
	"github.com/vdhoang/botui/internal/models"
)

// Client talks to the remote script endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a client for the given exec endpoint URL.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// get issues a GET with the given query values and decodes the JSON body.
func (c *Client) get(ctx context.Context, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("remote: build request: %w", err)
	}
	return c.do(req, out)
}

// post issues a POST with a JSON body and decodes the JSON response.
func (c *Client) post(ctx context.Context, q url.Values, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("remote: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?"+q.Encode(), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %v: %w", err, apperr.ErrTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("remote: status %d: %w", resp.StatusCode, apperr.ErrTransport)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("remote: read body: %w", apperr.ErrTransport)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("remote: decode body: %w", apperr.ErrTransport)
	}
	return nil
}

// listEnvelope tolerates both a bare array and a {data: [...]} wrapper.
type listEnvelope struct {
	Data []models.MemorySummary `json:"data"`
}

func (e *listEnvelope) UnmarshalJSON(b []byte) error {
	var direct []models.MemorySummary
	if err := json.Unmarshal(b, &direct); err == nil {
		e.Data = direct
		return nil
	}
	type wrapper listEnvelope
	var w wrapper
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	e.Data = w.Data
	return nil
}

// ListMemories fetches the basic index. The endpoint does not guarantee an
// order, so the result is sorted descending by event date here.
func (c *Client) ListMemories(ctx context.Context) ([]models.MemorySummary, error) {
	q := url.Values{"target": {"memory"}, "action": {"list"}}
	var env listEnvelope
	if err := c.get(ctx, q, &env); err != nil {
		return nil, err
	}
	items := env.Data
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].EventDate > items[j].EventDate
	})
	return items, nil
}

// detailEnvelope tolerates both a bare record and a {data: {...}} wrapper.
type detailEnvelope struct {
	Data *models.Memory `json:"data"`
}

func (e *detailEnvelope) UnmarshalJSON(b []byte) error {
	type wrapper detailEnvelope
	var w wrapper
	if err := json.Unmarshal(b, &w); err == nil && w.Data != nil {
		e.Data = w.Data
		return nil
	}
	var direct models.Memory
	if err := json.Unmarshal(b, &direct); err != nil {
		return err
	}
	e.Data = &direct
	return nil
}

// LoadMemory fetches one full record by id. A null response means the record
// is absent or was purged server-side; a record carrying isDeleted=true is
// returned as-is so callers can cache the deletion.
func (c *Client) LoadMemory(ctx context.Context, id int64) (*models.Memory, error) {
	q := url.Values{
		"target": {"memory"},
		"action": {"load"},
		"postId": {fmt.Sprintf("%d", id)},
	}
	var env detailEnvelope
	if err := c.get(ctx, q, &env); err != nil {
		return nil, err
	}
	if env.Data == nil || env.Data.ID == 0 {
		return nil, fmt.Errorf("remote: memory %d: %w", id, apperr.ErrNotFound)
	}
	return env.Data, nil
}

// saveResponse carries the authoritative fields the endpoint may reassign.
type saveResponse struct {
	ID        int64  `json:"id"`
	EventDate string `json:"eventDate"`
}

// SaveMemory submits a full record and merges the authoritative id and event
// date from the response over the submitted value.
func (c *Client) SaveMemory(ctx context.Context, m models.Memory) (models.Memory, error) {
	q := url.Values{"target": {"memory"}, "action": {"save"}}
	var resp saveResponse
	if err := c.post(ctx, q, m, &resp); err != nil {
		return models.Memory{}, err
	}
	if resp.ID != 0 {
		m.ID = resp.ID
	}
	if resp.EventDate != "" {
		m.EventDate = resp.EventDate
	}
	return m, nil
}

// textResponse is the shape of the text-block endpoints (family tree, lunar
// events).
type textResponse struct {
	Content string `json:"content"`
	Message string `json:"message"`
}

// LoadText fetches a raw text block (target "family" or "lunarEvents").
func (c *Client) LoadText(ctx context.Context, target, username string) (string, error) {
	q := url.Values{
		"target":   {target},
		"action":   {"load"},
		"username": {username},
	}
	var resp textResponse
	if err := c.get(ctx, q, &resp); err != nil {
		return "", err
	}
	return resp.Content, nil
}

// SaveText stores a raw text block and returns the endpoint's status message.
func (c *Client) SaveText(ctx context.Context, target, username, content string) (string, error) {
	q := url.Values{
		"target":   {target},
		"action":   {"save"},
		"username": {username},
		"content":  {content},
	}
	var resp textResponse
	if err := c.get(ctx, q, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// remindResponse is the reminder endpoint's message envelope.
type remindResponse struct {
	Messages []struct {
		Text string `json:"text"`
	} `json:"messages"`
}

// ListReminderMessages fetches the raw reminder message texts for a user.
// Parsing into structured reminders happens in the reminders package.
func (c *Client) ListReminderMessages(ctx context.Context, userID string) ([]string, error) {
	q := url.Values{"msg": {"list_remind"}, "userId": {userID}}
	var resp remindResponse
	if err := c.get(ctx, q, &resp); err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		texts = append(texts, m.Text)
	}
	return texts, nil
}

// CreateReminder registers a new reminder through the chat-command surface of
// the endpoint. datetime uses the "YYYY-MM-DD HH:mm" form.
func (c *Client) CreateReminder(ctx context.Context, userID, username, person, datetime, content, repeatType string, timezone int) error {
	msg := fmt.Sprintf("remind %s %s %s !repeat %s", person, datetime, content, repeatType)
	q := url.Values{
		"msg":      {msg},
		"userId":   {userID},
		"timezone": {fmt.Sprintf("%d", timezone)},
		"username": {username},
	}
	return c.get(ctx, q, nil)
}

// RemoveReminder deletes the reminder at the given zero-based index. The
// endpoint counts from one.
func (c *Client) RemoveReminder(ctx context.Context, userID string, index int) error {
	q := url.Values{
		"msg":    {fmt.Sprintf("remove_remind %d", index+1)},
		"userId": {userID},
	}
	return c.get(ctx, q, nil)
}
