// Package channels implements the outbound provider ports as thin HTTP JSON
// clients. Each provider is wired only when its base URL is configured; an
// unconfigured channel stays nil and the worker records skipped receipts.
package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/missionctl/leadrun-engine/config"
	"github.com/missionctl/leadrun-engine/internal/core"
)

const defaultTimeout = 30 * time.Second

// restClient is the shared HTTP plumbing behind every provider adapter.
type restClient struct {
	baseURL string
	apiKey  string
	channel string
	client  *http.Client
}

func newRESTClient(cfg config.ChannelProviderConfig, channel string, hc *http.Client) restClient {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return restClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		channel: channel,
		client:  hc,
	}
}

// postJSON sends the request body and decodes the response into out.
// Provider failures come back as ChannelError; 429 and 5xx are retryable.
func (c *restClient) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return core.NewChannelError(c.channel, "encode", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return core.NewChannelError(c.channel, "build_request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		cerr := core.NewChannelError(c.channel, "transport", err)
		cerr.Retryable = true
		return cerr
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		cerr := core.NewChannelError(c.channel, fmt.Sprintf("status_%d", resp.StatusCode),
			fmt.Errorf("%s", snippet))
		cerr.Retryable = resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return cerr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return core.NewChannelError(c.channel, "decode", err)
	}
	return nil
}

// getJSON issues a GET with query already encoded into path.
func (c *restClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return core.NewChannelError(c.channel, "build_request", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		cerr := core.NewChannelError(c.channel, "transport", err)
		cerr.Retryable = true
		return cerr
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		cerr := core.NewChannelError(c.channel, fmt.Sprintf("status_%d", resp.StatusCode),
			fmt.Errorf("%s", snippet))
		cerr.Retryable = resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return cerr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return core.NewChannelError(c.channel, "decode", err)
	}
	return nil
}

// Wire builds the channel set from configuration. Unconfigured providers are
// left nil.
func Wire(cfg config.ChannelsConfig, hc *http.Client) core.ChannelSet {
	var set core.ChannelSet
	if cfg.Email.Configured() {
		set.Email = NewEmailClient(cfg.Email, hc)
	}
	if cfg.SMS.Configured() {
		set.SMS = NewSMSClient(cfg.SMS, hc)
	}
	if cfg.Voice.Configured() {
		set.Voice = NewVoiceClient(cfg.Voice, hc)
	}
	if cfg.Avatar.Configured() {
		set.Avatar = NewAvatarClient(cfg.Avatar, hc)
	}
	if cfg.Calendar.Configured() {
		set.Calendar = NewCalendarClient(cfg.Calendar, hc)
	}
	return set
}
