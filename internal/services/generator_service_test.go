package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erdiagram/internal/models"
)

func TestGeneratorService_Generate(t *testing.T) {
	var got models.Diagram
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"schemaCode":"const OrderSchema = new Schema({})"}`))
	}))
	defer srv.Close()

	f := newFixture()
	d, err := loadDiagram(context.Background(), f.diagrams, f.graph, f.diagram.ID)
	require.NoError(t, err)

	code, err := NewGeneratorService(srv.URL+"/", time.Second).Generate(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, "const OrderSchema = new Schema({})", code)
	assert.Len(t, got.Entities, 2)
}

func TestGeneratorService_Parse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req parseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "schema text", req.SchemaCode)
		_, _ = w.Write([]byte(`{"entities":[{"id":"u","name":"User","attributes":[{"name":"email","dataType":"Email"}]}],"relationships":[]}`))
	}))
	defer srv.Close()

	graph, err := NewGeneratorService(srv.URL, time.Second).Parse(context.Background(), "schema text")
	require.NoError(t, err)
	require.Len(t, graph.Entities, 1)
	assert.Equal(t, "User", graph.Entities[0].Name)
	assert.Equal(t, "Email", graph.Entities[0].Attributes[0].DataType.String())
}

func TestGeneratorService_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		wantMsg string
	}{
		{name: "rejected input", status: http.StatusUnprocessableEntity, body: `{"error":"line 3: unexpected }"}`, wantErr: ErrInvalidInput, wantMsg: "line 3: unexpected }"},
		{name: "server failure", status: http.StatusInternalServerError, body: "boom", wantErr: ErrGenerator, wantMsg: "boom"},
		{name: "garbage body", status: http.StatusOK, body: "not json", wantErr: ErrGenerator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewGeneratorService(srv.URL, time.Second).Parse(context.Background(), "x")
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestGeneratorService_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewGeneratorService(url, time.Second).Generate(context.Background(), &models.Diagram{})
	assert.ErrorIs(t, err, ErrGenerator)
}
