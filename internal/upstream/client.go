// Package upstream wraps the external AI analytics service and the
// motor/pipeline control services behind one HTTP client. Analytics
// payloads are decoded into typed structs at this boundary; control
// endpoints are proxied verbatim, body and status code both.
//
// There are no retries and no circuit breaking anywhere in this package:
// an unreachable upstream surfaces to the caller immediately, and every
// dependent endpoint degrades independently.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/iliyamo/motor-health-dashboard/internal/model"
)

// Error reports a non-2xx upstream response. Status is surfaced to API
// clients when available; Body is logged server-side only.
type Error struct {
	Op     string // which upstream call failed, e.g. "ai.complete_batch"
	Status int    // upstream HTTP status, 0 when the request never completed
	Body   string // truncated upstream response body
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream %s: status %d: %s", e.Op, e.Status, e.Body)
}

// StatusOf returns the upstream status carried by err, or 0 when err is
// not an upstream error or the request never reached the service.
func StatusOf(err error) int {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Status
	}
	return 0
}

// Client issues requests against the three upstream services. A single
// http.Client is shared so connection reuse works across calls; the only
// per-call state is the context.
type Client struct {
	AIBase       string
	MotorBase    string
	PipelineBase string
	HTTP         *http.Client
}

// New builds a Client with a sane default timeout. Complete-batch payloads
// can be large, so the timeout is generous relative to the control calls.
func New(aiBase, motorBase, pipelineBase string) *Client {
	return &Client{
		AIBase:       aiBase,
		MotorBase:    motorBase,
		PipelineBase: pipelineBase,
		HTTP:         &http.Client{Timeout: 30 * time.Second},
	}
}

const maxErrBody = 512

// do runs one request and returns the raw body plus status. Non-2xx
// responses become *Error with a truncated body for the logs.
func (c *Client) do(ctx context.Context, op, method, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: build request: %w", op, err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%s: read body: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b := body
		if len(b) > maxErrBody {
			b = b[:maxErrBody]
		}
		return nil, resp.StatusCode, &Error{Op: op, Status: resp.StatusCode, Body: string(b)}
	}
	return body, resp.StatusCode, nil
}

// FetchCompleteBatch loads the full analysis results for one batch.
func (c *Client) FetchCompleteBatch(ctx context.Context, batchID string) (*model.CompleteBatch, error) {
	u := fmt.Sprintf("%s/batches/%s/complete", c.AIBase, url.PathEscape(batchID))
	body, _, err := c.do(ctx, "ai.complete_batch", http.MethodGet, u)
	if err != nil {
		return nil, err
	}
	var out model.CompleteBatch
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("ai.complete_batch: decode: %w", err)
	}
	log.Printf("[AI_SERVICE] Loaded complete batch %s", batchID)
	return &out, nil
}

// FetchUserBatches loads the most recent batches of a user. A response
// without a batches key is treated as an empty list, not an error.
func (c *Client) FetchUserBatches(ctx context.Context, userID string, count int) ([]model.BatchListItem, error) {
	u := fmt.Sprintf("%s/batches/user/%s/recent?count=%d", c.AIBase, url.PathEscape(userID), count)
	body, _, err := c.do(ctx, "ai.user_batches", http.MethodGet, u)
	if err != nil {
		return nil, err
	}
	var out model.RecentBatchesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("ai.user_batches: decode: %w", err)
	}
	if out.Batches == nil {
		log.Printf("[AI_SERVICE] No batches[] key in response for %s", userID)
		return nil, nil
	}
	log.Printf("[AI_SERVICE] Loaded %d batches for %s", len(out.Batches), userID)
	return out.Batches, nil
}

// Proxy calls below return the upstream body untouched so the API can
// echo it together with the upstream status code.

// MotorStatus fetches the motor/generator status.
func (c *Client) MotorStatus(ctx context.Context) (json.RawMessage, int, error) {
	return c.do(ctx, "motor.status", http.MethodGet, c.MotorBase+"/status")
}

// MotorStart starts the motor.
func (c *Client) MotorStart(ctx context.Context) (json.RawMessage, int, error) {
	return c.do(ctx, "motor.start", http.MethodPost, c.MotorBase+"/start")
}

// MotorStop stops the motor.
func (c *Client) MotorStop(ctx context.Context) (json.RawMessage, int, error) {
	return c.do(ctx, "motor.stop", http.MethodPost, c.MotorBase+"/stop")
}

// PipelineStatus fetches the streaming pipeline status for a user.
func (c *Client) PipelineStatus(ctx context.Context, userID string) (json.RawMessage, int, error) {
	u := fmt.Sprintf("%s/streaming/pipeline/status/%s", c.PipelineBase, url.PathEscape(userID))
	return c.do(ctx, "pipeline.status", http.MethodGet, u)
}

// PipelineStart starts the streaming pipeline for a user.
func (c *Client) PipelineStart(ctx context.Context, userID string) (json.RawMessage, int, error) {
	u := fmt.Sprintf("%s/streaming/pipeline/start/%s", c.PipelineBase, url.PathEscape(userID))
	return c.do(ctx, "pipeline.start", http.MethodPost, u)
}

// PipelineStop stops the streaming pipeline for a user.
func (c *Client) PipelineStop(ctx context.Context, userID string) (json.RawMessage, int, error) {
	u := fmt.Sprintf("%s/streaming/pipeline/stop/%s", c.PipelineBase, url.PathEscape(userID))
	return c.do(ctx, "pipeline.stop", http.MethodPost, u)
}
