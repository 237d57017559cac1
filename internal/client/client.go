// Package client implements diagram.Backend over the diagram REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"erdiagram/internal/diagram"
)

const apiPrefix = "/api/v1"

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s (%d): %s", msg, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s (%d)", msg, e.StatusCode)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type Option func(*Client)

// WithToken sends token as a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ diagram.Backend = (*Client)(nil)

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || env.Status == "error" {
		return &APIError{StatusCode: resp.StatusCode, Message: env.Message, Detail: env.Error}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode %s %s data: %w", method, path, err)
		}
	}
	return nil
}

func escape(id string) string { return url.PathEscape(id) }

func (c *Client) GetDiagram(ctx context.Context, id string) (*diagram.Diagram, error) {
	var d diagram.Diagram
	if err := c.do(ctx, http.MethodGet, "/diagrams/"+escape(id), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) UpdateDiagram(ctx context.Context, id string, settings diagram.Settings) (*diagram.Diagram, error) {
	var d diagram.Diagram
	if err := c.do(ctx, http.MethodPatch, "/diagrams/"+escape(id), settings, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) UpdateDiagramLayout(ctx context.Context, id string, layout diagram.Layout) error {
	return c.do(ctx, http.MethodPut, "/diagrams/"+escape(id)+"/layout", layout, nil)
}

func (c *Client) CreateEntity(ctx context.Context, payload diagram.EntityPayload) (*diagram.Entity, error) {
	var e diagram.Entity
	if err := c.do(ctx, http.MethodPost, "/entities", payload, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) UpdateEntity(ctx context.Context, id string, payload diagram.EntityPayload) (*diagram.Entity, error) {
	var e diagram.Entity
	if err := c.do(ctx, http.MethodPatch, "/entities/"+escape(id), payload, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) DeleteEntity(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/entities/"+escape(id), nil, nil)
}

func (c *Client) CreateAttribute(ctx context.Context, payload diagram.AttributePayload) (*diagram.Attribute, error) {
	var a diagram.Attribute
	if err := c.do(ctx, http.MethodPost, "/attributes", payload, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) UpdateAttribute(ctx context.Context, id string, payload diagram.AttributePayload) (*diagram.Attribute, error) {
	var a diagram.Attribute
	if err := c.do(ctx, http.MethodPatch, "/attributes/"+escape(id), payload, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *Client) DeleteAttribute(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/attributes/"+escape(id), nil, nil)
}

func (c *Client) CreateRelationship(ctx context.Context, payload diagram.RelationshipPayload) (*diagram.Relationship, error) {
	var r diagram.Relationship
	if err := c.do(ctx, http.MethodPost, "/relationships", payload, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) UpdateRelationship(ctx context.Context, id string, payload diagram.RelationshipPayload) (*diagram.Relationship, error) {
	var r diagram.Relationship
	if err := c.do(ctx, http.MethodPatch, "/relationships/"+escape(id), payload, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *Client) DeleteRelationship(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/relationships/"+escape(id), nil, nil)
}

type schemaBody struct {
	SchemaCode string `json:"schemaCode"`
}

func (c *Client) GenerateSchema(ctx context.Context, diagramID string) (string, error) {
	var out schemaBody
	if err := c.do(ctx, http.MethodGet, "/diagrams/"+escape(diagramID)+"/schema", nil, &out); err != nil {
		return "", err
	}
	return out.SchemaCode, nil
}

func (c *Client) ApplySchema(ctx context.Context, diagramID, schemaCode string) (*diagram.Diagram, error) {
	var d diagram.Diagram
	if err := c.do(ctx, http.MethodPut, "/diagrams/"+escape(diagramID)+"/schema", schemaBody{SchemaCode: schemaCode}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) Preview(ctx context.Context, diagramID string) (string, error) {
	var out struct {
		Mermaid string `json:"mermaid"`
	}
	if err := c.do(ctx, http.MethodGet, "/diagrams/"+escape(diagramID)+"/preview", nil, &out); err != nil {
		return "", err
	}
	return out.Mermaid, nil
}
