package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"erdiagram/internal/diagram"
	"erdiagram/internal/models"
)

// GeneratorService talks to the external schema generator. The generator
// turns a diagram graph into schema source text and parses edited text back
// into a graph.
type GeneratorService struct {
	baseURL string
	client  *http.Client
}

// ParsedGraph is the graph the generator extracts from schema text. Entity
// ids are local references; relationship endpoints point at them or at
// entity names.
type ParsedGraph struct {
	Entities      []diagram.Entity       `json:"entities"`
	Relationships []diagram.Relationship `json:"relationships"`
}

type generateResponse struct {
	SchemaCode string `json:"schemaCode"`
}

type parseRequest struct {
	SchemaCode string `json:"schemaCode"`
}

type generatorError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewGeneratorService(baseURL string, timeout time.Duration) *GeneratorService {
	return &GeneratorService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *GeneratorService) Generate(ctx context.Context, d *models.Diagram) (string, error) {
	var resp generateResponse
	if err := s.call(ctx, "generate", d, &resp); err != nil {
		return "", err
	}
	return resp.SchemaCode, nil
}

func (s *GeneratorService) Parse(ctx context.Context, schemaCode string) (*ParsedGraph, error) {
	var graph ParsedGraph
	if err := s.call(ctx, "parse", parseRequest{SchemaCode: schemaCode}, &graph); err != nil {
		return nil, err
	}
	return &graph, nil
}

// call posts body to /<operation> and decodes the JSON answer into out. A
// 4xx answer means the input was rejected and maps to ErrInvalidInput;
// anything else that is not 2xx maps to ErrGenerator.
func (s *GeneratorService) call(ctx context.Context, operation string, body, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		generatorRequests.WithLabelValues(operation, outcome).Inc()
		generatorDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/"+operation, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Error("schema generator unreachable", "operation", operation, "error", err)
		return fmt.Errorf("%w: %s: %v", ErrGenerator, operation, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%w: read %s response: %v", ErrGenerator, operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(raw)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return invalid("%s rejected: %s", operation, msg)
		}
		return fmt.Errorf("%w: %s returned %d: %s", ErrGenerator, operation, resp.StatusCode, msg)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", ErrGenerator, operation, err)
	}
	return nil
}

func errorMessage(raw []byte) string {
	var e generatorError
	if json.Unmarshal(raw, &e) == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
