package channels

import (
	"context"
	"net/http"

	"github.com/missionctl/leadrun-engine/config"
	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
)

// EmailClient delivers outreach email through the provider's REST API.
type EmailClient struct {
	rest restClient
}

// NewEmailClient builds an email provider client.
func NewEmailClient(cfg config.ChannelProviderConfig, hc *http.Client) *EmailClient {
	return &EmailClient{rest: newRESTClient(cfg, model.ActionEmail, hc)}
}

type emailRequest struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"bodyHtml"`
	Draft    bool   `json:"draft"`
}

type emailResponse struct {
	MessageID string `json:"messageId"`
}

// Send delivers the message, or saves it as a draft when DraftOnly is set.
func (c *EmailClient) Send(ctx context.Context, msg core.EmailMessage) (string, error) {
	var resp emailResponse
	err := c.rest.postJSON(ctx, "/v1/messages", emailRequest{
		To:       msg.To,
		Subject:  msg.Subject,
		BodyHTML: msg.BodyHTML,
		Draft:    msg.DraftOnly,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.MessageID, nil
}
