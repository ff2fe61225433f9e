package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// WebhookSink is an io.WriteCloser suitable as Output's writer: it buffers
// everything written to it and, on Close, delivers the accumulated bytes as
// the body of a single authenticated POST. Useful for batch jobs that
// extract or convert a document and ship the result to an external
// collector rather than a local file.
type WebhookSink struct {
	client *http.Client
	url    string
	buf    bytes.Buffer
}

// NewWebhookSink returns a sink that authenticates outgoing requests using
// tokens from ts.
func NewWebhookSink(ctx context.Context, ts oauth2.TokenSource, url string) *WebhookSink {
	return &WebhookSink{
		client: oauth2.NewClient(ctx, ts),
		url:    url,
	}
}

func (w *WebhookSink) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

// Close delivers the buffered bytes and resets the buffer.
func (w *WebhookSink) Close() error {
	resp, err := w.client.Post(w.url, "application/octet-stream", bytes.NewReader(w.buf.Bytes()))
	if err != nil {
		return Wrap("webhook: deliver", err)
	}
	defer resp.Body.Close()
	w.buf.Reset()
	if resp.StatusCode >= 300 {
		return &Error{Msg: fmt.Sprintf("webhook: remote returned %s", resp.Status)}
	}
	return nil
}
