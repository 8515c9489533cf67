package config

import "strings"

// ChannelProviderConfig is the connection settings for one outbound provider.
// An empty BaseURL leaves the channel unconfigured; the worker records
// skipped receipts for actions that need it.
type ChannelProviderConfig struct {
	BaseURL string `env:"BASE_URL"`
	APIKey  string `env:"API_KEY"`
}

func (c *ChannelProviderConfig) sanitize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.APIKey = strings.TrimSpace(c.APIKey)
}

// Configured reports whether the provider can be wired.
func (c *ChannelProviderConfig) Configured() bool {
	return c.BaseURL != ""
}

// ChannelsConfig groups the outbound provider integrations.
type ChannelsConfig struct {
	Email    ChannelProviderConfig `envPrefix:"CHANNEL_EMAIL_"`
	SMS      ChannelProviderConfig `envPrefix:"CHANNEL_SMS_"`
	Voice    ChannelProviderConfig `envPrefix:"CHANNEL_VOICE_"`
	Avatar   ChannelProviderConfig `envPrefix:"CHANNEL_AVATAR_"`
	Calendar ChannelProviderConfig `envPrefix:"CHANNEL_CALENDAR_"`
}

// Sanitize applies guardrails to channel configuration values.
func (c *ChannelsConfig) Sanitize() {
	c.Email.sanitize()
	c.SMS.sanitize()
	c.Voice.sanitize()
	c.Avatar.sanitize()
	c.Calendar.sanitize()
}
