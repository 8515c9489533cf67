package channels

import (
	"context"
	"net/http"

	"github.com/missionctl/leadrun-engine/config"
	"github.com/missionctl/leadrun-engine/internal/core"
	"github.com/missionctl/leadrun-engine/internal/domain/model"
)

// SMSClient delivers outreach texts through the provider's REST API.
type SMSClient struct {
	rest restClient
}

// NewSMSClient builds an SMS provider client.
func NewSMSClient(cfg config.ChannelProviderConfig, hc *http.Client) *SMSClient {
	return &SMSClient{rest: newRESTClient(cfg, model.ActionSMS, hc)}
}

type smsRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

type smsResponse struct {
	MessageID string `json:"messageId"`
}

// Send delivers one text message.
func (c *SMSClient) Send(ctx context.Context, msg core.SMSMessage) (string, error) {
	var resp smsResponse
	if err := c.rest.postJSON(ctx, "/v1/sms", smsRequest{To: msg.To, Body: msg.Body}, &resp); err != nil {
		return "", err
	}
	return resp.MessageID, nil
}
