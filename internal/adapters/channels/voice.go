package channels

import (
	"context"
	"net/http"

	"github.com/missionctl/leadrun-engine/config"
	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
)

// VoiceClient places synthesized outbound calls through the provider's API.
type VoiceClient struct {
	rest restClient
}

// NewVoiceClient builds a voice provider client.
func NewVoiceClient(cfg config.ChannelProviderConfig, hc *http.Client) *VoiceClient {
	return &VoiceClient{rest: newRESTClient(cfg, model.ActionCall, hc)}
}

type callRequest struct {
	To     string `json:"to"`
	Script string `json:"script"`
}

type callResponse struct {
	CallID string `json:"callId"`
}

// Place starts one outbound call.
func (c *VoiceClient) Place(ctx context.Context, req core.CallRequest) (string, error) {
	var resp callResponse
	if err := c.rest.postJSON(ctx, "/v1/calls", callRequest{To: req.To, Script: req.Script}, &resp); err != nil {
		return "", err
	}
	return resp.CallID, nil
}
