package email_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subscriptions/pkg/email"
)

var validConfig = email.Config{
	PostmarkServerToken: "server-token",
	SenderEmail:         "billing@example.com",
	SupportEmail:        "support@example.com",
}

func TestMessageValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  email.Message
		ok   bool
	}{
		{"valid html", email.Message{To: "anna@example.com", Subject: "s", HTMLBody: "<p>x</p>"}, true},
		{"valid text", email.Message{To: "anna@example.com", Subject: "s", TextBody: "x"}, true},
		{"bad recipient", email.Message{To: "anna", Subject: "s", HTMLBody: "x"}, false},
		{"no subject", email.Message{To: "anna@example.com", Subject: " ", HTMLBody: "x"}, false},
		{"no body", email.Message{To: "anna@example.com", Subject: "s"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.msg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, email.ErrInvalidMessage)
		})
	}
}

func TestNewPostmarkSender_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := validConfig
	cfg.PostmarkServerToken = ""
	_, err := email.NewPostmarkSender(cfg)
	require.ErrorIs(t, err, email.ErrInvalidConfig)

	cfg = validConfig
	cfg.SenderEmail = "not-an-email"
	_, err = email.NewPostmarkSender(cfg)
	require.ErrorIs(t, err, email.ErrInvalidConfig)

	cfg = validConfig
	cfg.SupportEmail = "nope"
	_, err = email.NewPostmarkSender(cfg)
	require.ErrorIs(t, err, email.ErrInvalidConfig)

	assert.Panics(t, func() { email.MustNewPostmarkSender(email.Config{}) })
	assert.True(t, validConfig.Enabled())
	assert.False(t, email.Config{}.Enabled())
}

func TestPostmarkSender_Send(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "server-token", r.Header.Get("X-Postmark-Server-Token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"To":"anna@example.com","MessageID":"m-1","ErrorCode":0,"Message":"OK"}`))
	}))
	defer srv.Close()

	sender := email.MustNewPostmarkSender(validConfig, email.WithBaseURL(srv.URL))
	err := sender.Send(context.Background(), email.Message{
		To:       "anna@example.com",
		Subject:  "Your plan changed",
		HTMLBody: "<p>Premium</p>",
		Tag:      "plan-changed",
	})
	require.NoError(t, err)
	assert.Equal(t, "billing@example.com", got["From"])
	assert.Equal(t, "support@example.com", got["ReplyTo"])
	assert.Equal(t, "anna@example.com", got["To"])
	assert.Equal(t, "plan-changed", got["Tag"])
}

func TestPostmarkSender_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"ErrorCode":300,"Message":"Invalid email request"}`))
	}))
	defer srv.Close()

	sender := email.MustNewPostmarkSender(validConfig, email.WithBaseURL(srv.URL))
	err := sender.Send(context.Background(), email.Message{To: "anna@example.com", Subject: "s", HTMLBody: "b"})
	require.ErrorIs(t, err, email.ErrFailedToSendEmail)
}

func TestPostmarkSender_InvalidMessage(t *testing.T) {
	t.Parallel()

	sender := email.MustNewPostmarkSender(validConfig, email.WithBaseURL("http://127.0.0.1:1"))
	err := sender.Send(context.Background(), email.Message{To: "anna@example.com"})
	require.ErrorIs(t, err, email.ErrInvalidMessage)
}

func TestLogSender(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sender := email.NewLogSender(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, sender.Send(context.Background(), email.Message{
		To: "anna@example.com", Subject: "Your plan changed", HTMLBody: "x", Tag: "plan-changed",
	}))
	assert.Contains(t, buf.String(), `"to":"anna@example.com"`)
	assert.Contains(t, buf.String(), `"tag":"plan-changed"`)

	require.ErrorIs(t, sender.Send(context.Background(), email.Message{}), email.ErrInvalidMessage)
}
