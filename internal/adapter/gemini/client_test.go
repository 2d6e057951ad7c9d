package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"brainweave/backend/internal/adapter/gemini"
)

func TestClient_ExtractStructured(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"parts": []map[string]interface{}{
							{"text": `{"title": "Test Episode"}`},
						},
						"role": "model",
					},
				},
			},
		})
	}))
	defer ts.Close()

	c, err := gemini.NewClient(context.Background(), "test-key",
		option.WithEndpoint(ts.URL),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	defer c.Close()

	out, err := c.ExtractStructured(context.Background(), "extract metadata")
	require.NoError(t, err)
	assert.Equal(t, `{"title": "Test Episode"}`, out)
}

func TestClient_ExtractStructured_NoCandidates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{},
		})
	}))
	defer ts.Close()

	c, err := gemini.NewClient(context.Background(), "test-key",
		option.WithEndpoint(ts.URL),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.ExtractStructured(context.Background(), "extract metadata")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}
