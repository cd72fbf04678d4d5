package net

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

type ContentType int

const (
	ContentTypeNone ContentType = iota
	ContentTypeJSON
	ContentTypeText
	ContentTypeSSML
)

func (c ContentType) String() string {
	switch c {
	case ContentTypeJSON:
		return "application/json"
	case ContentTypeText:
		return "text/plain"
	case ContentTypeSSML:
		return "application/ssml+xml"
	default:
		return ""
	}
}

const DefaultTimeout = 60 * time.Second

var defaultClient = &http.Client{Timeout: DefaultTimeout}

// Response carries the status and fully read body of a request.
type Response struct {
	StatusCode int
	Body       []byte
}

func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// SendRequest issues method against url. A nil data sends no body. Non-2xx
// responses are returned as is; only transport failures are errors.
func SendRequest(ctx context.Context, client *http.Client, method, url string,
	data []byte, contentType ContentType, headers map[string]string) (*Response, error) {
	if client == nil {
		client = defaultClient
	}

	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}

	if ct := contentType.String(); ct != "" {
		req.Header.Set("Content-Type", ct)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %v", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: b}, nil
}
