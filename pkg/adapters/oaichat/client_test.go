package oaichat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, v any) *http.Response {
	b, _ := json.Marshal(v)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(b)),
	}
}

func reply(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

func newTestClient(t *testing.T, rt roundTripperFunc) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: "http://upstream/", APIKey: "k-123", Model: "test-model"},
		WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)
	return c
}

func TestGenerate(t *testing.T) {
	var got chatCompletionRequest
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/v1/chat/completions", req.URL.Path)
		assert.Equal(t, "Bearer k-123", req.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
		return jsonResponse(http.StatusOK, reply("  AFFIDAVIT\nI, Jane Doe...  ")), nil
	})

	out, err := c.Generate(context.Background(), ports.GenerationRequest{
		Kind:         domain.KindAffidavit,
		Instructions: "You are an expert legal document writer.",
		Text:         "I was present",
		Facts:        domain.Facts{domain.FactFullName: "Jane Doe"},
	})
	require.NoError(t, err)
	assert.Equal(t, "AFFIDAVIT\nI, Jane Doe...", out)

	assert.Equal(t, "test-model", got.Model)
	assert.InDelta(t, 0.3, got.Temperature, 1e-9)
	assert.Equal(t, 2000, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "You are an expert legal document writer.", got.Messages[0].Content)
	assert.Contains(t, got.Messages[1].Content, "- Full Name: Jane Doe")
}

func TestGenerate_HTTPError(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, map[string]string{"error": "bad key"}), nil
	})

	_, err := c.Generate(context.Background(), ports.GenerationRequest{Kind: domain.KindLetter})
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "bad key")
}

func TestGenerate_EmptyChoices(t *testing.T) {
	c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, map[string]any{"choices": []any{}}), nil
	})

	_, err := c.Generate(context.Background(), ports.GenerationRequest{})
	assert.ErrorIs(t, err, ErrEmptyChoice)
}

func TestNeedsMoreInfo(t *testing.T) {
	tests := []struct {
		name, upstream, want string
	}{
		{"generate", "GENERATE", ""},
		{"question", "QUESTION: Who is the recipient?", "Who is the recipient?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got chatCompletionRequest
			c := newTestClient(t, func(req *http.Request) (*http.Response, error) {
				require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
				return jsonResponse(http.StatusOK, reply(tt.upstream)), nil
			})

			q, err := c.NeedsMoreInfo(context.Background(), domain.KindLetter, "write a letter")
			require.NoError(t, err)
			assert.Equal(t, tt.want, q)
			assert.InDelta(t, 0.1, got.Temperature, 1e-9)
			assert.Equal(t, 200, got.MaxTokens)
			assert.Contains(t, got.Messages[1].Content, "User wants to create a letter")
		})
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Model: "m"})
	assert.Error(t, err)
	_, err = New(Config{BaseURL: GroqBaseURL})
	assert.Error(t, err)
}
