package gateway_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	should "github.com/stretchr/testify/assert"
	must "github.com/stretchr/testify/require"

	"supplyagent/gateway"
)

type mockDoer struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockDoer) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

type captureSink struct {
	redirects []string
	documents [][]byte
}

func (s *captureSink) RedirectTo(target string)       { s.redirects = append(s.redirects, target) }
func (s *captureSink) ReplaceDocument(content []byte) { s.documents = append(s.documents, content) }

func respond(req *http.Request, status int, contentType, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{contentType}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Request:    req,
	}
}

func newTestClient(t *testing.T, doFunc func(req *http.Request) (*http.Response, error), display gateway.DisplaySink) *gateway.Client {
	t.Helper()
	client, err := gateway.NewClient(gateway.ClientOpts{
		BaseEndpoint: "http://agents.local",
		HTTPClient:   &mockDoer{doFunc: doFunc},
		Display:      display,
	})
	must.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	_, err := gateway.NewClient(gateway.ClientOpts{HTTPClient: &mockDoer{}})
	should.Error(t, err, "blank endpoint must be rejected")

	_, err = gateway.NewClient(gateway.ClientOpts{BaseEndpoint: "http://agents.local"})
	should.Error(t, err, "missing http client must be rejected")

	client, err := gateway.NewClient(gateway.ClientOpts{
		BaseEndpoint: "http://agents.local/",
		HTTPClient:   &mockDoer{},
	})
	must.NoError(t, err)
	should.NotNil(t, client)
}

func TestInvokeRedirectIntercepted(t *testing.T) {
	sink := &captureSink{}
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		landed := req.Clone(req.Context())
		landed.URL, _ = url.Parse("http://auth.local/login")
		return respond(landed, http.StatusOK, "text/html", "<html>login</html>"), nil
	}, sink)

	_, err := client.Invoke(context.Background(), map[string]any{}, "agent-1")

	var redirect *gateway.RedirectError
	must.ErrorAs(t, err, &redirect)
	should.Equal(t, "http://auth.local/login", redirect.Location)
	should.Equal(t, []string{"http://auth.local/login"}, sink.redirects, "display must be re-pointed at the redirect target")
}

func TestInvokeFallbackPageIntercepted(t *testing.T) {
	const page = "<html><body>not the api</body></html>"
	sink := &captureSink{}
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return respond(req, http.StatusNotFound, "text/html; charset=utf-8", page), nil
	}, sink)

	_, err := client.Invoke(context.Background(), map[string]any{}, "agent-1")

	var fallback *gateway.FallbackPageError
	must.ErrorAs(t, err, &fallback)
	should.Equal(t, page, string(fallback.Body))
	must.Len(t, sink.documents, 1, "document body must replace the display")
	should.Equal(t, page, string(sink.documents[0]))
}

func TestInvokePlainNotFound(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return respond(req, http.StatusNotFound, "application/json", `{"error":"no such agent"}`), nil
	}, nil)

	_, err := client.Invoke(context.Background(), map[string]any{}, "agent-1")
	should.ErrorIs(t, err, gateway.ErrEndpointMissing)
}

func TestInvokeServerFault(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return respond(req, http.StatusBadGateway, "text/plain", "bad gateway"), nil
	}, nil)

	_, err := client.Invoke(context.Background(), map[string]any{}, "agent-1")

	var unavailable *gateway.ServiceUnavailableError
	must.ErrorAs(t, err, &unavailable)
	should.Equal(t, http.StatusBadGateway, unavailable.Code)
}

func TestInvokeEnvelopeRejection(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "agent error text wins",
			body:    `{"success":false,"error":"rate limited"}`,
			wantMsg: "rate limited",
		},
		{
			name:    "blank error gets the default",
			body:    `{"success":false,"error":""}`,
			wantMsg: "agent declined the request",
		},
		{
			name:    "malformed envelope counts as rejection",
			body:    `<<<not json>>>`,
			wantMsg: "agent declined the request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
				return respond(req, http.StatusOK, "application/json", tt.body), nil
			}, nil)

			_, err := client.Invoke(context.Background(), map[string]any{}, "agent-1")

			var rejected *gateway.RejectedError
			must.ErrorAs(t, err, &rejected)
			should.Equal(t, tt.wantMsg, rejected.Message)
			should.Equal(t, tt.wantMsg, gateway.Reason(err), "status text must be the bare agent message")
		})
	}
}

func TestInvokeSuccess(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		should.Equal(t, "http://agents.local/api/agents/agent-1", req.URL.String())
		should.Equal(t, "application/json", req.Header.Get("Content-Type"))
		body := `{"success":true,"response":{"result":{"status":"yellow","current_count":12}}}`
		return respond(req, http.StatusOK, "application/json", body), nil
	}, nil)

	result, err := client.Invoke(context.Background(), map[string]any{"current_count": 12}, "agent-1")
	must.NoError(t, err)
	should.Equal(t, "yellow", result["status"])
	should.Equal(t, float64(12), result["current_count"], "result comes back verbatim, untyped")
}

func TestInvokeMissingResultIsEmptyMap(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no response object", body: `{"success":true}`},
		{name: "null result", body: `{"success":true,"response":{"result":null}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
				return respond(req, http.StatusOK, "application/json", tt.body), nil
			}, nil)

			result, err := client.Invoke(context.Background(), map[string]any{}, "agent-1")
			must.NoError(t, err)
			should.NotNil(t, result)
			should.Empty(t, result)
		})
	}
}

func TestInvokeDeadlineExceeded(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return nil, context.DeadlineExceeded
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	_, err := client.Invoke(ctx, map[string]any{}, "agent-1")

	var timedOut *gateway.TimedOutError
	must.ErrorAs(t, err, &timedOut)
	should.Equal(t, "agent-1", timedOut.Agent)
}

func TestInvokeTransportError(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}, nil)

	_, err := client.Invoke(context.Background(), map[string]any{}, "agent-1")
	must.Error(t, err)
	should.Contains(t, err.Error(), "cannot reach agent host")
}
