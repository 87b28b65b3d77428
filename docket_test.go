package docket

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/docket/internal/runtime"
	"github.com/aretw0/docket/pkg/adapters/memory"
	"github.com/aretw0/docket/pkg/adapters/png"
	"github.com/aretw0/docket/pkg/conversation"
	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/ports"
)

type stubChecker struct {
	question string
}

func (s *stubChecker) Generate(ctx context.Context, req ports.GenerationRequest) (string, error) {
	return "Body of the " + string(req.Kind), nil
}

func (s *stubChecker) NeedsMoreInfo(ctx context.Context, kind domain.DocumentKind, text string) (string, error) {
	return s.question, nil
}

func TestNew_Defaults(t *testing.T) {
	a, err := New()
	require.NoError(t, err)

	reply, err := a.Send(context.Background(), "u1", "/start")
	require.NoError(t, err)
	assert.Equal(t, conversation.OutcomeReset, reply.Outcome.Kind)
	require.NotEmpty(t, reply.Texts)
	assert.Equal(t, runtime.WelcomeText, reply.Texts[len(reply.Texts)-1])
}

func TestSend_EmptySession(t *testing.T) {
	a, err := New()
	require.NoError(t, err)
	_, err = a.Send(context.Background(), " ", "hello")
	assert.ErrorIs(t, err, conversation.ErrEmptySessionID)
}

func TestSend_ChatModeProducesPNG(t *testing.T) {
	store := memory.NewStore()
	a, err := New(WithStore(store), WithRenderer(png.New()), WithGenerator(&stubChecker{}))
	require.NoError(t, err)
	ctx := context.Background()

	for _, text := range []string{"/start", "1"} {
		_, err := a.Send(ctx, "chat", text)
		require.NoError(t, err)
	}
	reply, err := a.Send(ctx, "chat", "what is an affidavit?")
	require.NoError(t, err)

	assert.Equal(t, conversation.OutcomeGenerated, reply.Outcome.Kind)
	require.Len(t, reply.Artifacts, 1)
	assert.Contains(t, reply.Artifacts[0].Filename, "chat_response_")
	assert.True(t, bytes.HasPrefix(reply.Artifacts[0].Data, []byte("\x89PNG")))
	assert.Equal(t, "Body of the general", reply.Outcome.Generated)

	_, err = store.Load(ctx, "chat")
	assert.NoError(t, err, "session is persisted in the injected store")
}

func TestSend_DelegatedQuestion(t *testing.T) {
	gen := &stubChecker{question: "Which court is this for?"}
	a, err := New(WithGenerator(gen), WithDelegatedQuestions())
	require.NoError(t, err)
	ctx := context.Background()

	for _, text := range []string{"/start", "2", "1"} {
		_, err := a.Send(ctx, "d", text)
		require.NoError(t, err)
	}
	reply, err := a.Send(ctx, "d", "I need an affidavit for my passport")
	require.NoError(t, err)
	assert.Equal(t, conversation.OutcomeAsked, reply.Outcome.Kind)
	assert.Empty(t, reply.Outcome.Field)
	assert.Equal(t, []string{"Which court is this for?"}, reply.Texts)

	gen.question = ""
	reply, err = a.Send(ctx, "d", "The district court")
	require.NoError(t, err)
	assert.Equal(t, conversation.OutcomeGenerated, reply.Outcome.Kind)
}
