package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/m3rciful/vedbot/internal/assistant"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(context.Background(), Config{
		APIKey:     "test-key",
		Model:      "gemini-test",
		BaseURL:    srv.URL + "/",
		HTTPClient: srv.Client(),
	})
	require.NoError(t, err)
	return c
}

func TestGenerateReturnsText(t *testing.T) {
	var gotPath, gotBody string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Здравствуйте!"}]},"finishReason":"STOP"}]}`)
	})

	text, err := c.Generate(context.Background(), "Привет!")
	require.NoError(t, err)
	assert.Equal(t, "Здравствуйте!", text)
	assert.True(t, strings.HasSuffix(gotPath, "models/gemini-test:generateContent"), gotPath)
	assert.Contains(t, gotBody, "Привет!")
}

func TestGenerateQuotaError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"code":429,"message":"Quota exceeded","status":"RESOURCE_EXHAUSTED"}}`)
	})

	_, err := c.Generate(context.Background(), "q")
	var aerr *assistant.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, assistant.KindQuota, aerr.Kind)
	assert.Contains(t, aerr.Error(), "429 Quota exceeded")
}

func TestGenerateEmptyCandidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`)
	})

	_, err := c.Generate(context.Background(), "q")
	var aerr *assistant.Error
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, assistant.KindMalformed, aerr.Kind)
	assert.Contains(t, aerr.Message, "SAFETY")
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want assistant.Kind
	}{
		{"deadline", context.DeadlineExceeded, assistant.KindTransport},
		{"url", &url.Error{Op: "Post", URL: "https://x", Err: errors.New("EOF")}, assistant.KindTransport},
		{"server", genai.APIError{Code: 500, Status: "INTERNAL"}, assistant.KindUpstream},
		{"status only", genai.APIError{Code: 400, Status: "RESOURCE_EXHAUSTED"}, assistant.KindQuota},
		{"other", errors.New("weird"), assistant.KindUpstream},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var aerr *assistant.Error
			require.ErrorAs(t, classify(tc.err), &aerr)
			assert.Equal(t, tc.want, aerr.Kind)
			assert.NotEmpty(t, aerr.Error())
		})
	}
}

func TestNewValidates(t *testing.T) {
	_, err := New(context.Background(), Config{Model: "m"})
	assert.Error(t, err)
	_, err = New(context.Background(), Config{APIKey: "k"})
	assert.Error(t, err)
}

func TestHTTPOptionsFollowTimeout(t *testing.T) {
	opts := Config{}.httpOptions()
	assert.Equal(t, time.Duration(-1), opts.ResponseTimeout, "zero timeout waits forever")
	assert.Zero(t, opts.Retries)

	opts = Config{Timeout: 30 * time.Second}.httpOptions()
	assert.Equal(t, 30*time.Second, opts.ResponseTimeout)
}
