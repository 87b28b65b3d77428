package conversation_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/docket/internal/runtime"
	"github.com/aretw0/docket/pkg/adapters/memory"
	"github.com/aretw0/docket/pkg/catalog"
	"github.com/aretw0/docket/pkg/conversation"
	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/extract"
	"github.com/aretw0/docket/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixed = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

type harness struct {
	orch     *conversation.Orchestrator
	gen      *fakeGenerator
	renderer *fakeRenderer
	out      *recordingSender
}

func newHarness(t *testing.T, opts ...conversation.Option) *harness {
	t.Helper()
	h := &harness{
		gen:      &fakeGenerator{reply: "To: The Registrar\nI, Jane Doe, affirm the above."},
		renderer: &fakeRenderer{},
		out:      &recordingSender{},
	}
	machine := runtime.NewMachine(catalog.Default(), extract.New())
	opts = append([]conversation.Option{conversation.WithClock(func() time.Time { return fixed })}, opts...)
	h.orch = conversation.New(session.NewManager(memory.NewStore()), machine, h.gen, h.renderer, opts...)
	return h
}

func (h *harness) say(t *testing.T, id, text string) conversation.Outcome {
	t.Helper()
	outcome, err := h.orch.HandleTurn(context.Background(), conversation.Turn{SessionID: id, Text: text}, h.out)
	require.NoError(t, err)
	return outcome
}

func (h *harness) startAffidavit(t *testing.T, id string) {
	t.Helper()
	h.say(t, id, "/start")
	h.say(t, id, "2")
	outcome := h.say(t, id, "1")
	require.Equal(t, domain.KindAffidavit, outcome.Session.Kind)
}

func TestHandleTurn_AffidavitScenario(t *testing.T) {
	h := newHarness(t)
	h.startAffidavit(t, "u1")

	o := h.say(t, "u1", "My name is Jane Doe")
	assert.Equal(t, conversation.OutcomeAsked, o.Kind)
	assert.Equal(t, domain.FactAddress, o.Field)
	assert.Equal(t, "What is your complete address (with postal code)?", h.out.Last())

	o = h.say(t, "u1", "123 Main Street, Delhi 110001")
	assert.Equal(t, domain.FactPurpose, o.Field)

	o = h.say(t, "u1", "for travel")
	assert.Equal(t, domain.FactStatement, o.Field)
	assert.Empty(t, h.gen.Calls(), "generator must not run while fields are missing")

	o = h.say(t, "u1", "I was present at the event")
	require.Equal(t, conversation.OutcomeGenerated, o.Kind)
	assert.Nil(t, o.Failure)

	calls := h.gen.Calls()
	require.Len(t, calls, 1)
	req := calls[0]
	assert.Equal(t, domain.KindAffidavit, req.Kind)
	assert.Equal(t, "I was present at the event", req.Text)
	assert.Equal(t, "Affidavit Document", req.Label)
	assert.NotEmpty(t, req.Instructions)
	for _, k := range domain.NameAliases {
		assert.Equal(t, "Jane Doe", req.Facts[k], k)
	}
	assert.Equal(t, "123 Main Street, Delhi 110001", req.Facts[domain.FactAddress])
	assert.Equal(t, "for travel", req.Facts[domain.FactPurpose])
	assert.Equal(t, "I was present at the event", req.Facts[domain.FactStatement])

	require.Len(t, h.out.artifacts, 1)
	a := h.out.artifacts[0]
	assert.Equal(t, "affidavit_20261014_093000.pdf", a.Filename)
	assert.Equal(t, "Affidavit Document", a.Title)
	assert.Equal(t, "application/pdf", a.MIMEType)
	assert.Equal(t, "Professional PDF version with proper formatting", a.Caption)
	assert.Contains(t, h.out.texts, "*Affidavit Document*\n\n"+h.gen.reply)
	assert.Contains(t, h.out.Last(), "Document Generated Successfully")

	assert.Empty(t, o.Session.PendingField)
	assert.NotContains(t, o.Session.Facts, "tampered", "renderer received a copy of the facts")
}

func TestHandleTurn_GeneralGeneratesImmediately(t *testing.T) {
	h := newHarness(t)
	h.say(t, "u2", "/start")
	o := h.say(t, "u2", "chat")
	assert.Equal(t, runtime.ChatModeText, o.Text)

	o = h.say(t, "u2", "what is an affidavit?")
	require.Equal(t, conversation.OutcomeGenerated, o.Kind)
	require.Len(t, h.gen.Calls(), 1)
	assert.Equal(t, domain.KindGeneral, h.gen.Calls()[0].Kind)

	require.Len(t, h.out.artifacts, 1)
	assert.Equal(t, "chat_response_20261014_093000.pdf", h.out.artifacts[0].Filename)
	assert.Equal(t, "AI response in PDF format", h.out.artifacts[0].Caption)
	assert.Contains(t, h.out.texts, "*AI Assistant Response*\n\n"+h.gen.reply)
}

func TestHandleTurn_GenerationFailureLeavesSessionUntouched(t *testing.T) {
	h := newHarness(t)
	h.startAffidavit(t, "u3")
	h.say(t, "u3", "My name is Jane Doe")
	h.say(t, "u3", "123 Main Street, Delhi 110001")
	before := h.say(t, "u3", "for travel").Session.Clone()

	h.gen.err = errBackend
	sentArtifacts := len(h.out.artifacts)

	o := h.say(t, "u3", "I was present at the event")
	assert.Equal(t, conversation.OutcomeFailed, o.Kind)
	require.NotNil(t, o.Failure)
	assert.ErrorIs(t, o.Failure, domain.ErrGeneration)
	assert.ErrorIs(t, o.Failure, errBackend)
	assert.Equal(t, conversation.ApologyText, h.out.Last())
	assert.Len(t, h.out.artifacts, sentArtifacts)
	assert.Empty(t, h.renderer.calls)

	stored, err := h.orch.Sessions().Load(context.Background(), "u3")
	require.NoError(t, err)
	assert.Equal(t, before.Facts, stored.Facts)
	assert.Equal(t, before.State, stored.State)
	assert.Equal(t, before.PendingField, stored.PendingField)
	assert.Equal(t, before.Turns, stored.Turns)

	// Retrying the same turn works once the backend recovers.
	h.gen.err = nil
	o = h.say(t, "u3", "I was present at the event")
	assert.Equal(t, conversation.OutcomeGenerated, o.Kind)
	assert.Equal(t, "I was present at the event", o.Session.Facts[domain.FactStatement])
}

func TestDefaultTimeouts(t *testing.T) {
	assert.Equal(t, 60*time.Second, conversation.DefaultGenerateTimeout)
	assert.Equal(t, 30*time.Second, conversation.DefaultRenderTimeout)
}

func TestHandleTurn_GenerationTimeout(t *testing.T) {
	h := newHarness(t, conversation.WithTimeouts(20*time.Millisecond, 0))
	h.gen.block = true
	h.say(t, "u4", "/start")
	h.say(t, "u4", "chat")

	o := h.say(t, "u4", "hello")
	assert.Equal(t, conversation.OutcomeFailed, o.Kind)
	assert.ErrorIs(t, o.Failure, context.DeadlineExceeded)
}

func TestHandleTurn_EmptyGenerationIsFailure(t *testing.T) {
	h := newHarness(t)
	h.gen.reply = "   "
	h.say(t, "u10", "chat")

	o := h.say(t, "u10", "hello")
	assert.Equal(t, conversation.OutcomeFailed, o.Kind)
	assert.Empty(t, h.renderer.calls)
}

func TestHandleTurn_RenderFailureKeepsFacts(t *testing.T) {
	h := newHarness(t)
	h.renderer.err = fmt.Errorf("font missing")
	h.say(t, "u5", "/menu")
	h.say(t, "u5", "generate")
	h.say(t, "u5", "custom")

	// A single word matches no name or address rule, so it becomes the purpose.
	o := h.say(t, "u5", "Tenancy")
	assert.Equal(t, conversation.OutcomeGenerated, o.Kind)
	require.NotNil(t, o.Failure)
	assert.ErrorIs(t, o.Failure, domain.ErrRender)
	assert.Nil(t, o.Artifact)
	assert.Equal(t, conversation.RenderFailureText, h.out.Last())
	assert.Empty(t, h.out.artifacts)

	stored, err := h.orch.Sessions().Load(context.Background(), "u5")
	require.NoError(t, err)
	assert.Equal(t, "Tenancy", stored.Facts[domain.FactPurpose])
	assert.Equal(t, domain.StateCollecting, stored.State)
}

func TestHandleTurn_DeliveryFailureIsLoggedOnly(t *testing.T) {
	h := newHarness(t)
	h.out.artifactErr = fmt.Errorf("upload rejected")
	h.say(t, "u6", "chat")

	o := h.say(t, "u6", "hello")
	assert.Equal(t, conversation.OutcomeGenerated, o.Kind)
	require.NotNil(t, o.Failure)
	assert.ErrorIs(t, o.Failure, domain.ErrDelivery)
	require.NotNil(t, o.Artifact)

	stored, err := h.orch.Sessions().Load(context.Background(), "u6")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Turns)
}

func TestHandleTurn_CancelAndMenuClearTogether(t *testing.T) {
	for _, cmd := range []string{"/cancel", "/menu", "/start@docket_bot"} {
		t.Run(cmd, func(t *testing.T) {
			h := newHarness(t)
			h.startAffidavit(t, "u7")
			h.say(t, "u7", "My name is Jane Doe")

			o := h.say(t, "u7", cmd)
			assert.Empty(t, o.Session.Facts)
			assert.Empty(t, o.Session.Kind)
			assert.Empty(t, o.Session.PendingField)
			assert.Equal(t, domain.StateMenu, o.Session.State)
			if cmd == "/cancel" {
				assert.Equal(t, conversation.OutcomeCancelled, o.Kind)
				assert.Equal(t, runtime.CancelText, h.out.Last())
			} else {
				assert.Equal(t, conversation.OutcomeReset, o.Kind)
				assert.Equal(t, runtime.WelcomeText, h.out.Last())
			}
		})
	}
}

func TestHandleTurn_HelpAndUnknownCommand(t *testing.T) {
	h := newHarness(t)

	o := h.say(t, "u8", "/help")
	assert.Equal(t, runtime.HelpText, o.Text)
	assert.Nil(t, o.Session)

	o = h.say(t, "u8", "/frobnicate")
	assert.Contains(t, o.Text, "Unknown command")
}

func TestHandleTurn_Hooks(t *testing.T) {
	var mu sync.Mutex
	var questions []string
	steps := map[domain.EventType]int{}
	resets := 0

	h := newHarness(t, conversation.WithHooks(domain.LifecycleHooks{
		OnQuestion: func(_ context.Context, e *domain.QuestionEvent) {
			mu.Lock()
			defer mu.Unlock()
			questions = append(questions, e.Field)
		},
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			mu.Lock()
			defer mu.Unlock()
			steps[e.Type]++
		},
		OnReset: func(_ context.Context, e *domain.ResetEvent) {
			mu.Lock()
			defer mu.Unlock()
			resets++
		},
	}))

	h.startAffidavit(t, "u9")
	h.say(t, "u9", "My name is Jane Doe")
	h.say(t, "u9", "123 Main Street, Delhi 110001")
	h.say(t, "u9", "for travel")
	h.say(t, "u9", "I was present at the event")

	assert.Equal(t, []string{domain.FactAddress, domain.FactPurpose, domain.FactStatement}, questions)
	assert.Equal(t, map[domain.EventType]int{
		domain.EventGenerate: 1,
		domain.EventRender:   1,
		domain.EventDeliver:  1,
	}, steps)
	assert.Equal(t, 1, resets)
}

func TestHandleTurn_ConcurrentSessions(t *testing.T) {
	h := newHarness(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			ctx := context.Background()
			for _, text := range []string{"/start", "chat", "hello"} {
				_, err := h.orch.HandleTurn(ctx, conversation.Turn{SessionID: id, Text: text}, h.out)
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, h.gen.Calls(), 8)
	ids, err := h.orch.Sessions().List(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 8)
}

func TestHandleTurn_EmptySessionID(t *testing.T) {
	h := newHarness(t)
	_, err := h.orch.HandleTurn(context.Background(), conversation.Turn{Text: "hi"}, h.out)
	assert.ErrorIs(t, err, conversation.ErrEmptySessionID)
}
