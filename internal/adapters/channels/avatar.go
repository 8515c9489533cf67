package channels

import (
	"context"
	"net/http"

	"github.com/missionctl/leadrun-engine/config"
	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
)

// AvatarClient queues personalized avatar video renders.
type AvatarClient struct {
	rest restClient
}

// NewAvatarClient builds an avatar provider client.
func NewAvatarClient(cfg config.ChannelProviderConfig, hc *http.Client) *AvatarClient {
	return &AvatarClient{rest: newRESTClient(cfg, model.ActionAvatar, hc)}
}

type avatarRequest struct {
	Script   string `json:"script"`
	LeadName string `json:"leadName"`
}

type avatarResponse struct {
	AssetURL string `json:"assetUrl"`
}

// Render queues one avatar render and returns the asset URL.
func (c *AvatarClient) Render(ctx context.Context, req core.AvatarRequest) (string, error) {
	var resp avatarResponse
	err := c.rest.postJSON(ctx, "/v1/renders", avatarRequest{
		Script:   req.Script,
		LeadName: req.LeadName,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.AssetURL, nil
}
