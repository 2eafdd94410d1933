// Package alert posts remote Chatvolt failures to a Slack incoming webhook.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/slack-go/slack"

	"github.com/chatvolt/chatvolt-mcp/internal/tool"
)

const (
	defaultCooldown = 5 * time.Minute
	postTimeout     = 10 * time.Second
)

// Notifier sends one Slack message per failing operation per cooldown
// window. Only remote failures are reported; argument errors are the
// caller's problem and stay in the journal.
type Notifier struct {
	webhookURL string
	server     string
	client     *http.Client
	cooldown   time.Duration
	logger     *slog.Logger
	now        func() time.Time

	mu   sync.Mutex
	last map[string]time.Time // operation → last alert
	wg   sync.WaitGroup
}

var _ tool.Observer = (*Notifier)(nil)

// Option configures a Notifier.
type Option func(*Notifier)

// WithCooldown sets the minimum time between alerts for one operation.
func WithCooldown(d time.Duration) Option {
	return func(n *Notifier) { n.cooldown = d }
}

// WithHTTPClient sets the client used to post to the webhook.
func WithHTTPClient(c *http.Client) Option {
	return func(n *Notifier) { n.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *Notifier) { n.logger = l }
}

// New creates a Notifier. server names this instance in the message.
func New(webhookURL, server string, opts ...Option) (*Notifier, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("alert: slack webhook URL is required")
	}
	n := &Notifier{
		webhookURL: webhookURL,
		server:     server,
		client:     &http.Client{Timeout: postTimeout},
		cooldown:   defaultCooldown,
		logger:     slog.Default(),
		now:        time.Now,
		last:       make(map[string]time.Time),
	}
	for _, o := range opts {
		o(n)
	}
	n.logger = n.logger.With("component", "alert")
	return n, nil
}

// Observe queues an alert for remote failures. The post runs in the
// background so dispatch is never held up by Slack.
func (n *Notifier) Observe(ctx context.Context, rec tool.CallRecord) {
	if rec.Status != tool.StatusError || rec.Kind != tool.KindRemote {
		return
	}
	if !n.allow(rec.Operation) {
		return
	}

	msg := n.message(rec)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), postTimeout)
		defer cancel()
		if err := slack.PostWebhookCustomHTTPContext(pctx, n.webhookURL, n.client, msg); err != nil {
			n.logger.Warn("slack alert failed", "operation", rec.Operation, "error", err)
		}
	}()
}

func (n *Notifier) allow(op string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.now()
	if last, ok := n.last[op]; ok && now.Sub(last) < n.cooldown {
		return false
	}
	n.last[op] = now
	return true
}

func (n *Notifier) message(rec tool.CallRecord) *slack.WebhookMessage {
	return &slack.WebhookMessage{
		Text: fmt.Sprintf(":warning: %s: `%s` failed", n.server, rec.Operation),
		Attachments: []slack.Attachment{{
			Color: "danger",
			Text:  rec.Error,
			Fields: []slack.AttachmentField{
				{Title: "Operation", Value: rec.Operation, Short: true},
				{Title: "Duration", Value: rec.Duration.Round(time.Millisecond).String(), Short: true},
				{Title: "Started", Value: rec.StartedAt.UTC().Format(time.RFC3339), Short: true},
			},
		}},
	}
}

// Wait blocks until queued alerts have been posted.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
