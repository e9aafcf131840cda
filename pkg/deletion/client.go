// pkg/deletion/client.go
package deletion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxBodyBytes bounds how much of a response body is kept for logging
const maxBodyBytes = 4096

// Response is the part of an API reply the dispatcher needs
type Response struct {
	StatusCode int
	Body       string
}

// OK reports whether the API accepted the deletion
func (r *Response) OK() bool {
	switch r.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent:
		return true
	}
	return false
}

type deleteRequest struct {
	Identifiers struct {
		Custom struct {
			CPFCNPJ string `json:"cpf_cnpj"`
		} `json:"custom"`
	} `json:"identifiers"`
}

// Client calls the user deletion endpoint
type Client struct {
	url         string
	partnerName string
	token       string
	client      *http.Client
}

// NewClient creates a client with the given per-request timeout
func NewClient(url, partnerName, token string, timeout time.Duration) *Client {
	return &Client{
		url:         url,
		partnerName: partnerName,
		token:       token,
		client:      &http.Client{Timeout: timeout},
	}
}

// Delete requests the removal of the profile identified by a CPF/CNPJ.
// Any HTTP status is a Response; only transport failures are errors.
func (c *Client) Delete(ctx context.Context, id string) (*Response, error) {
	var payload deleteRequest
	payload.Identifiers.Custom.CPFCNPJ = id

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-PARTNER-NAME", c.partnerName)
	req.Header.Set("X-REQUEST-TOKEN", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: string(text)}, nil
}
