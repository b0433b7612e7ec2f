package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGeneratorSendsChatCompletion(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"summary\":\"ok\"}"}}]}`))
	}))
	defer server.Close()

	generator := NewHTTPGenerator(Config{APIKey: "sk-test", BaseURL: server.URL + "/v1/", Model: "test-model"})
	text, err := generator.Generate(context.Background(), "hello", true)
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, text)

	assert.Equal(t, "test-model", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "hello", captured.Messages[1].Content)
	require.NotNil(t, captured.ResponseFormat)
	assert.Equal(t, "json_object", captured.ResponseFormat.Type)
}

func TestHTTPGeneratorRateLimits(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "too many requests", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down"}}`},
		{name: "quota exhausted", status: http.StatusForbidden, body: `{"error":{"type":"insufficient_quota","message":"quota"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewHTTPGenerator(Config{APIKey: "k", BaseURL: server.URL}).Generate(context.Background(), "p", false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrRateLimited))
		})
	}
}

func TestHTTPGeneratorServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewHTTPGenerator(Config{APIKey: "k", BaseURL: server.URL}).Generate(context.Background(), "p", false)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRateLimited))
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "plain", input: `{"a":1}`, want: `{"a":1}`, ok: true},
		{name: "fenced", input: "```json\n{\"a\":1}\n```", want: `{"a":1}`, ok: true},
		{name: "prose around", input: `Sure! {"a":{"b":2}} hope that helps {"c":3}`, want: `{"a":{"b":2}}`, ok: true},
		{name: "braces in strings", input: `{"a":"}{","b":"\"}"}`, want: `{"a":"}{","b":"\"}"}`, ok: true},
		{name: "unbalanced", input: `{"a":1`, ok: false},
		{name: "no object", input: "I cannot help with that.", ok: false},
		{name: "empty", input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractJSONObject(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
