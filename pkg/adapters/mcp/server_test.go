package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/docket/internal/runtime"
	"github.com/aretw0/docket/pkg/adapters/draft"
	"github.com/aretw0/docket/pkg/adapters/memory"
	"github.com/aretw0/docket/pkg/adapters/png"
	"github.com/aretw0/docket/pkg/catalog"
	"github.com/aretw0/docket/pkg/conversation"
	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/extract"
	"github.com/aretw0/docket/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gen, err := draft.New("")
	require.NoError(t, err)
	orch := conversation.New(
		session.NewManager(memory.NewStore()),
		runtime.NewMachine(catalog.Default(), extract.New()),
		gen,
		png.New(),
	)
	return NewServer(orch, WithVersion("test"))
}

func send(t *testing.T, s *Server, id, text string) TurnResult {
	t.Helper()
	res, err := s.handleSendMessage(context.Background(), mcp.CallToolRequest{}, SendMessageArgs{SessionID: id, Text: text})
	require.NoError(t, err)
	return res
}

func TestSendMessage_ChatGeneratesImage(t *testing.T) {
	s := newTestServer(t)

	res := send(t, s, "m1", "/start")
	assert.Equal(t, conversation.OutcomeReset, res.Outcome)
	require.Len(t, res.Replies, 1)

	res = send(t, s, "m1", "1")
	assert.Equal(t, conversation.OutcomeReply, res.Outcome)

	res = send(t, s, "m1", "Write a short thank you note to my neighbour")
	assert.Equal(t, conversation.OutcomeGenerated, res.Outcome)
	require.Len(t, res.Artifacts, 1)
	assert.Equal(t, "image/png", res.Artifacts[0].MIMEType)
	assert.Regexp(t, `^chat_response_\d{8}_\d{6}\.png$`, res.Artifacts[0].Filename)
}

func TestSendMessage_AsksForField(t *testing.T) {
	s := newTestServer(t)
	send(t, s, "m2", "/start")
	send(t, s, "m2", "2")
	send(t, s, "m2", "affidavit")

	res := send(t, s, "m2", "My name is Jane Doe")
	assert.Equal(t, conversation.OutcomeAsked, res.Outcome)
	assert.Equal(t, domain.FactAddress, res.Field)
}

func TestSendMessage_Rejected(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleSendMessage(ctx, mcp.CallToolRequest{}, SendMessageArgs{SessionID: "x", Text: "  "})
	assert.Error(t, err)

	_, err = s.handleSendMessage(ctx, mcp.CallToolRequest{}, SendMessageArgs{Text: "hello"})
	assert.ErrorIs(t, err, conversation.ErrEmptySessionID)
}

func TestResetSession(t *testing.T) {
	s := newTestServer(t)
	send(t, s, "m3", "/start")
	send(t, s, "m3", "2")
	send(t, s, "m3", "1")
	send(t, s, "m3", "My name is Jane Doe")

	res, err := s.handleReset(context.Background(), mcp.CallToolRequest{}, SessionArgs{SessionID: "m3"})
	require.NoError(t, err)
	assert.Equal(t, conversation.OutcomeReset, res.Outcome)

	sess, err := s.orch.Sessions().Load(context.Background(), "m3")
	require.NoError(t, err)
	assert.Empty(t, sess.Facts)
	assert.Empty(t, sess.Kind)
}

func TestListKinds(t *testing.T) {
	s := newTestServer(t)

	list, err := s.handleListKinds(context.Background(), mcp.CallToolRequest{}, struct{}{})
	require.NoError(t, err)
	require.NotEmpty(t, list.Kinds)
	assert.Equal(t, domain.KindAffidavit, list.Kinds[0].Kind)
	assert.Equal(t, 1, list.Kinds[0].Number)
}

func TestGetSession(t *testing.T) {
	s := newTestServer(t)
	send(t, s, "m4", "/start")

	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"session_id": "m4"}
	res, err := s.handleGetSession(context.Background(), req)
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	var sess domain.Session
	require.NoError(t, json.Unmarshal([]byte(text.Text), &sess))
	assert.Equal(t, domain.StateMenu, sess.State)

	req.Params.Arguments = map[string]any{"session_id": "missing"}
	res, err = s.handleGetSession(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
