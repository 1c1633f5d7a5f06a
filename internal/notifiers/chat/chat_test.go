// internal/notifiers/chat/chat_test.go
package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "blueprint-leads/internal/common/errors"
	"blueprint-leads/internal/common/logger"
	"blueprint-leads/internal/lead"
)

func chatLead() *lead.Lead {
	return &lead.Lead{
		ID:            "PT-1700000000000-ABCDEF",
		Name:          "Joshua",
		ContactHandle: "+6281234567890",
		Archetype:     "BUILDER",
		Availability:  []string{"evenings"},
	}
}

func TestLeadCreated_PostsGatewayMessage(t *testing.T) {
	var captured TextMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret-token", r.Header.Get("Token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"response":"sent"}`))
	}))
	defer srv.Close()

	n := New(logger.NewTestLogger(t), srv.URL, "secret-token", "+6281111111111")

	require.NoError(t, n.LeadCreated(context.Background(), chatLead()))
	assert.Equal(t, "+6281111111111", captured.To)
	assert.False(t, captured.IsGroup)
	assert.Contains(t, captured.Messages, "Joshua")
	assert.Contains(t, captured.Messages, "+6281234567890")
}

func TestFollowUpFlagged_PostsGatewayMessage(t *testing.T) {
	var captured TextMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(`{"response":"sent"}`))
	}))
	defer srv.Close()

	n := New(logger.NewTestLogger(t), srv.URL, "secret-token", "+6281111111111")

	require.NoError(t, n.FollowUpFlagged(context.Background(), "+6281234567890"))
	assert.Contains(t, captured.Messages, "Follow-up Requested")
	assert.Contains(t, captured.Messages, "+6281234567890")
}

func TestLeadCreated_WrapsGatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"response":"invalid token"}`))
	}))
	defer srv.Close()

	n := New(logger.NewTestLogger(t), srv.URL, "bad-token", "+6281111111111")

	err := n.LeadCreated(context.Background(), chatLead())
	require.Error(t, err)

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeChatSendFailed, stdErr.Code)
}
