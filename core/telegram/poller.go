package telegram

import (
	"net"
	"strconv"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/vedbot/core/config"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollTimeout = 10 * time.Second

// WebhookOptions is where the webhook listens and the URL Telegram calls.
type WebhookOptions struct {
	Listen string
	Port   int
	URL    string
}

// PollerOptions selects and tunes the update source.
type PollerOptions struct {
	RunMode                string
	LongPollTimeoutSeconds int
	Webhook                WebhookOptions
}

// BuildPoller returns a webhook listener for the webhook run mode and a long
// poller for anything else.
func BuildPoller(opts PollerOptions) tele.Poller {
	if !strings.EqualFold(strings.TrimSpace(opts.RunMode), coreconfig.RunModeWebhook) {
		return &tele.LongPoller{Timeout: longPollTimeout(opts.LongPollTimeoutSeconds)}
	}
	return &tele.Webhook{
		Listen:   net.JoinHostPort(opts.Webhook.Listen, strconv.Itoa(opts.Webhook.Port)),
		Endpoint: &tele.WebhookEndpoint{PublicURL: opts.Webhook.URL},
	}
}

func longPollTimeout(seconds int) time.Duration {
	if seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultLongPollTimeout
}
