package bungie

import (
	"context"
	"errors"
	"fmt"

	"resty.dev/v3"
)

//go:generate mockgen -source=client.go -destination=../mocks/bungie/mock_client.go -package=mock_bungie

// ManifestClient reads the Destiny 2 manifest and its definition tables.
type ManifestClient interface {
	Manifest(ctx context.Context) (*Manifest, error)
	Definitions(ctx context.Context, contentPath string) (DefinitionTable, error)
}

var ErrMissingAPIKey = errors.New("bungie API key is not set")

type Client struct {
	httpClient   *resty.Client
	manifestPath string
}

var _ ManifestClient = (*Client)(nil)

// NewClient fails with ErrMissingAPIKey before any request is made.
func NewClient(baseURL, manifestPath, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("X-API-Key", apiKey)
	client.SetHeader("Accept", "application/json")

	return &Client{
		httpClient:   client,
		manifestPath: manifestPath,
	}, nil
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

func (client *Client) Manifest(ctx context.Context) (*Manifest, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetResult(&ManifestResponse{}).
		Get(client.manifestPath)
	if err != nil {
		return nil, fmt.Errorf("httpClient.Get(%s) > %w", client.manifestPath, err)
	}
	if response.IsError() {
		return nil, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	body, ok := response.Result().(*ManifestResponse)
	if !ok || body == nil {
		return nil, fmt.Errorf("empty manifest response: %s", response.String())
	}
	if body.ErrorCode != 0 && body.ErrorCode != ErrorCodeSuccess {
		return nil, fmt.Errorf("manifest error %d (%s): %s", body.ErrorCode, body.ErrorStatus, body.Message)
	}
	if body.Response.Version == "" {
		return nil, errors.New("manifest response has no version")
	}
	return &body.Response, nil
}

func (client *Client) Definitions(ctx context.Context, contentPath string) (DefinitionTable, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetResult(&DefinitionTable{}).
		Get(contentPath)
	if err != nil {
		return nil, fmt.Errorf("httpClient.Get(%s) > %w", contentPath, err)
	}
	if response.IsError() {
		return nil, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	table, ok := response.Result().(*DefinitionTable)
	if !ok || table == nil {
		return nil, fmt.Errorf("empty definition response for %s", contentPath)
	}
	return *table, nil
}
