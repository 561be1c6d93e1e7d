// Package client talks to the workflow-automation service's REST API.
// It owns transport and authentication only; graph semantics live in
// pkg/models.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rmorandeira/flowctl/pkg/log"
	"github.com/rmorandeira/flowctl/pkg/models"
)

const (
	apiKeyHeader  = "X-N8N-API-KEY"
	workflowsPath = "/api/v1/workflows"

	defaultTimeout = 30 * time.Second
)

// Config carries everything the client needs. Credentials are passed
// explicitly; the package never reads ambient process state.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration // used only when HTTPClient is nil
	// HTTPClient overrides the default client, e.g. for tests.
	HTTPClient *http.Client
}

// Client is a thin HTTP client for the service's workflow endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New validates the configuration and returns a ready client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("client: base URL is required")
	}

	if cfg.APIKey == "" {
		return nil, errors.New("client: API key is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}

		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     log.WithModule("client"),
	}, nil
}

// FetchAll returns every workflow known to the service, normalizing the
// three list response shapes (bare array, data envelope, workflows
// envelope) to a flat slice.
func (c *Client) FetchAll(ctx context.Context) ([]*models.Workflow, error) {
	body, err := c.do(ctx, http.MethodGet, workflowsPath, nil)
	if err != nil {
		return nil, err
	}

	return normalizeList(body)
}

// FetchByID returns a single workflow. A 404 maps to
// models.ErrWorkflowNotFound.
func (c *Client) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	body, err := c.do(ctx, http.MethodGet, workflowsPath+"/"+id, nil)
	if err != nil {
		return nil, err
	}

	workflow := new(models.Workflow)
	if err := json.Unmarshal(body, workflow); err != nil {
		return nil, fmt.Errorf("failed to decode workflow %s: %w", id, err)
	}

	return workflow, nil
}

// Create submits the workflow as a new entity. Service-owned fields are
// stripped from the request; the response carries the copy the service
// stored, id included.
func (c *Client) Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	payload, err := models.CreatePayload(workflow)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodPost, workflowsPath, payload)
	if err != nil {
		return nil, err
	}

	created := new(models.Workflow)
	if err := json.Unmarshal(body, created); err != nil {
		return nil, fmt.Errorf("failed to decode created workflow: %w", err)
	}

	c.logger.InfoContext(ctx, "Created workflow", "name", created.Name, "id", created.ID)

	return created, nil
}

// Update submits a modification of an existing entity. Identity and
// audit fields are stripped; everything else, active state included,
// goes through as-is.
func (c *Client) Update(ctx context.Context, id string, workflow *models.Workflow) (*models.Workflow, error) {
	payload, err := models.UpdatePayload(workflow)
	if err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodPut, workflowsPath+"/"+id, payload)
	if err != nil {
		return nil, err
	}

	updated := new(models.Workflow)
	if err := json.Unmarshal(body, updated); err != nil {
		return nil, fmt.Errorf("failed to decode updated workflow %s: %w", id, err)
	}

	c.logger.InfoContext(ctx, "Updated workflow", "name", updated.Name, "id", id)

	return updated, nil
}

// Delete removes a workflow from the service.
func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, workflowsPath+"/"+id, nil)

	return err
}

// do executes one request and returns the response body. Any non-2xx
// status becomes a *RemoteError carrying the transport detail verbatim;
// nothing is retried here.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	url := c.baseURL + path

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s %s request: %w", method, url, err)
	}

	req.Header.Set(apiKeyHeader, c.apiKey)

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RemoteError{Op: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Op: method, URL: url, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, &RemoteError{Op: method, URL: url, Status: resp.StatusCode, Err: models.ErrWorkflowNotFound}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &RemoteError{
			Op:     method,
			URL:    url,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("service returned %s: %s", resp.Status, strings.TrimSpace(string(body))),
		}
	}

	return body, nil
}

// listEnvelope covers the two enveloped list response shapes.
type listEnvelope struct {
	Data      []*models.Workflow `json:"data"`
	Workflows []*models.Workflow `json:"workflows"`
}

func normalizeList(body []byte) ([]*models.Workflow, error) {
	var list []*models.Workflow
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var envelope listEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode workflow list: %w", err)
	}

	switch {
	case envelope.Data != nil:
		return envelope.Data, nil
	case envelope.Workflows != nil:
		return envelope.Workflows, nil
	default:
		return nil, errors.New("unrecognized workflow list response shape")
	}
}
