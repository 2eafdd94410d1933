package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatvolt/chatvolt-mcp/internal/tool"
)

type webhookSink struct {
	mu   sync.Mutex
	msgs []slack.WebhookMessage
}

func (s *webhookSink) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var msg slack.WebhookMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			t.Errorf("decode webhook: %v", err)
		}
		s.mu.Lock()
		s.msgs = append(s.msgs, msg)
		s.mu.Unlock()
		w.Write([]byte("ok"))
	}
}

func (s *webhookSink) messages() []slack.WebhookMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]slack.WebhookMessage(nil), s.msgs...)
}

func remoteFailure(op string) tool.CallRecord {
	return tool.CallRecord{
		Operation: op,
		Status:    tool.StatusError,
		Kind:      tool.KindRemote,
		Error:     "chatvolt: GET /agents/a1: status 500",
		StartedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		Duration:  120 * time.Millisecond,
	}
}

func TestNotifier_PostsRemoteFailures(t *testing.T) {
	sink := &webhookSink{}
	srv := httptest.NewServer(sink.handler(t))
	defer srv.Close()

	n, err := New(srv.URL, "chatvolt-mcp")
	require.NoError(t, err)

	n.Observe(context.Background(), remoteFailure("get_agent"))
	n.Wait()

	msgs := sink.messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "get_agent")
	assert.Contains(t, msgs[0].Text, "chatvolt-mcp")
	require.Len(t, msgs[0].Attachments, 1)
	assert.Equal(t, "chatvolt: GET /agents/a1: status 500", msgs[0].Attachments[0].Text)
}

func TestNotifier_IgnoresValidationAndSuccess(t *testing.T) {
	sink := &webhookSink{}
	srv := httptest.NewServer(sink.handler(t))
	defer srv.Close()

	n, err := New(srv.URL, "test")
	require.NoError(t, err)

	n.Observe(context.Background(), tool.CallRecord{Operation: "get_agent", Status: tool.StatusOK})
	n.Observe(context.Background(), tool.CallRecord{Operation: "get_agent", Status: tool.StatusError, Kind: tool.KindMissingArgument})
	n.Observe(context.Background(), tool.CallRecord{Operation: "nope", Status: tool.StatusError, Kind: tool.KindUnknownOperation})
	n.Wait()

	assert.Empty(t, sink.messages())
}

func TestNotifier_Cooldown(t *testing.T) {
	sink := &webhookSink{}
	srv := httptest.NewServer(sink.handler(t))
	defer srv.Close()

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	n, err := New(srv.URL, "test", WithCooldown(time.Minute))
	require.NoError(t, err)
	n.now = func() time.Time { return now }

	n.Observe(context.Background(), remoteFailure("get_agent"))
	n.Observe(context.Background(), remoteFailure("get_agent"))
	n.Observe(context.Background(), remoteFailure("list_agents"))
	now = now.Add(2 * time.Minute)
	n.Observe(context.Background(), remoteFailure("get_agent"))
	n.Wait()

	assert.Len(t, sink.messages(), 3)
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New("", "test")
	require.Error(t, err)
}
