package research

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    QuickLookupResult
		wantErr bool
	}{
		{"strict", `{"valid": true, "companyName": "Acme"}`, QuickLookupResult{Valid: true, CompanyName: "Acme"}, false},
		{"fenced", "```json\n{\"valid\": true, \"industry\": \"Retail\"}\n```", QuickLookupResult{Valid: true, Industry: "Retail"}, false},
		{"trailing comma", `{"valid": true, "companyName": "Acme",}`, QuickLookupResult{Valid: true, CompanyName: "Acme"}, false},
		{"single quotes", `{'valid': true, 'companyName': 'Acme'}`, QuickLookupResult{Valid: true, CompanyName: "Acme"}, false},
		{"empty", "   ", QuickLookupResult{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got QuickLookupResult
			err := decodeJSON(tt.raw, &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Plain sentence.", "Plain sentence."},
		{"**Bold** and _italic_ text", "Bold and italic text"},
		{"# Heading\n\nBody line\nwraps here", "Heading Body line wraps here"},
		{"- one\n- two", "one two"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, plainText(tt.in))
		})
	}
}

func TestOpenAIProvider_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "{\"valid\": true}"}}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider("sk-test", "", srv.URL+"/v1/")
	out, err := p.Complete(context.Background(), Prompt{System: "sys", User: "hello", JSON: true})
	require.NoError(t, err)

	assert.Equal(t, `{"valid": true}`, out)
	assert.Equal(t, defaultOpenAIModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[1].Content)
	assert.Equal(t, "json_object", got.ResponseFormat["type"])
	assert.Equal(t, "openai:"+defaultOpenAIModel, p.Name())
}

func TestOpenAIProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusTooManyRequests, `{"error": {"message": "slow down"}}`},
		{"api error", http.StatusOK, `{"error": {"message": "bad model"}}`},
		{"no choices", http.StatusOK, `{"choices": []}`},
		{"not json", http.StatusOK, `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOpenAIProvider("k", "m", srv.URL).Complete(context.Background(), Prompt{User: "x"})
			assert.Error(t, err)
		})
	}
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), "", "")
	assert.Error(t, err)
}
