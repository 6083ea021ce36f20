package solr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// TransportError covers every failure to obtain a usable response:
// dial errors, timeouts, non-2xx status and undecodable bodies.
type TransportError struct {
	URI    string
	Status int // 0 when no response was received
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("solr %s: status %d: %v", e.URI, e.Status, e.Err)
	}
	return fmt.Sprintf("solr %s: %v", e.URI, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// get performs a single GET and returns the body of a 2xx response.
func get(ctx context.Context, client *http.Client, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, &TransportError{URI: uri, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{URI: uri, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URI: uri, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URI: uri, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", http.StatusText(resp.StatusCode))}
	}
	return body, nil
}

func getJSON(ctx context.Context, client *http.Client, uri string, out interface{}) error {
	body, err := get(ctx, client, uri)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{URI: uri, Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}
