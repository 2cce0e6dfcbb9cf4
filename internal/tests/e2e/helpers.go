package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// KioskClient drives the kiosk routes like the browser on the booth does:
// cookies are kept and redirects are not followed.
type KioskClient struct {
	baseURL    string
	jar        http.CookieJar
	httpClient *http.Client
}

func NewKioskClient(t *testing.T, baseURL string) *KioskClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &KioskClient{
		baseURL: baseURL,
		jar:     jar,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Response is a finished call with its body already read.
type Response struct {
	Status   int
	Location string
	Header   http.Header
	Body     []byte
}

func (r *Response) Decode(t *testing.T, dst any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(r.Body, &env), string(r.Body))
	require.True(t, env.Success, string(r.Body))
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func (r *Response) ErrorCode(t *testing.T) string {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(r.Body, &env), string(r.Body))
	return env.Error.Code
}

func (c *KioskClient) do(t *testing.T, req *http.Request) *Response {
	t.Helper()
	resp, err := c.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return &Response{
		Status:   resp.StatusCode,
		Location: resp.Header.Get("Location"),
		Header:   resp.Header,
		Body:     body,
	}
}

func (c *KioskClient) Get(t *testing.T, path string) *Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	require.NoError(t, err)
	return c.do(t, req)
}

func (c *KioskClient) PostForm(t *testing.T, path string, form url.Values) *Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(t, req)
}

func (c *KioskClient) PostJSON(t *testing.T, path string, body any) *Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	return c.do(t, req)
}

// PostWebhook delivers a gateway notification. It does not carry the
// kiosk's cookies.
func (c *KioskClient) PostWebhook(t *testing.T, body []byte, signature string) *Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/payment-confirmation/webhook", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Hitpay-Signature", signature)
	req.Header.Set("Hitpay-Event-Type", "completed")
	req.Header.Set("Hitpay-Event-Object", "payment_request")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: raw}
}

// Follow requests the path and query of a link minted for another host.
func (c *KioskClient) Follow(t *testing.T, link string) *Response {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return c.Get(t, u.RequestURI())
}

// WatchStatus opens the status websocket with the session cookie.
func (c *KioskClient) WatchStatus(t *testing.T, requestID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws/payment-status?payment_request_id=" + url.QueryEscape(requestID)
	dialer := websocket.Dialer{Jar: c.jar, HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// FakeGateway stands in for the HitPay payment-requests API.
type FakeGateway struct {
	server *httptest.Server

	mu       sync.Mutex
	seq      int
	requests []url.Values
}

func NewFakeGateway(t *testing.T) *FakeGateway {
	t.Helper()
	g := &FakeGateway{}
	g.server = httptest.NewServer(http.HandlerFunc(g.createPaymentRequest))
	t.Cleanup(g.server.Close)
	return g
}

func (g *FakeGateway) URL() string { return g.server.URL }

func (g *FakeGateway) Requests() []url.Values {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]url.Values(nil), g.requests...)
}

func (g *FakeGateway) createPaymentRequest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/v1/payment-requests" {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	g.mu.Lock()
	g.seq++
	id := fmt.Sprintf("PR-%04d", g.seq)
	g.requests = append(g.requests, r.PostForm)
	g.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"id":               id,
		"url":              "https://checkout.example/" + id,
		"status":           "pending",
		"reference_number": r.PostForm.Get("reference"),
	})
}
