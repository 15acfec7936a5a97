package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// ClientError is returned for 4xx responses and for 2xx responses whose
// envelope reports an error status.
type ClientError struct {
	StatusCode int
	Status     string
	Message    string
	Payload    json.RawMessage
	Headers    http.Header
	Body       []byte
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error (status %d): %s", e.StatusCode, e.Message)
}

type ServerError struct {
	StatusCode int
	Text       string
	Headers    http.Header
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (status %d): %s", e.StatusCode, e.Text)
}

type errorResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Payload json.RawMessage `json:"payload"`
}

func handleException(resp *resty.Response) error {
	statusCode := resp.StatusCode()

	if statusCode < 400 {
		return nil
	}

	if statusCode < 500 {
		return newClientError(resp)
	}

	return &ServerError{
		StatusCode: statusCode,
		Text:       string(resp.Body()),
		Headers:    resp.Header(),
	}
}

func newClientError(resp *resty.Response) *ClientError {
	clientErr := &ClientError{
		StatusCode: resp.StatusCode(),
		Message:    string(resp.Body()),
		Headers:    resp.Header(),
		Body:       resp.Body(),
	}

	var errResp errorResponse
	if err := json.Unmarshal(resp.Body(), &errResp); err != nil {
		return clientErr
	}

	if errResp.Message != "" {
		clientErr.Message = errResp.Message
	}
	clientErr.Status = errResp.Status
	clientErr.Payload = errResp.Payload

	return clientErr
}

func decode(resp *resty.Response, result any) error {
	body := resp.Body()

	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Status == "error" {
		return newClientError(resp)
	}

	if result == nil || len(body) == 0 {
		return nil
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
