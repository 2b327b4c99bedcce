package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ubirch/ubirch-load-test/vars"
)

func newTestTransport() *HTTPTransport {
	return NewHTTPTransport(5*time.Second, 10*time.Second, 0, nil)
}

// echo answers with method, path and the relevant request headers
func echo(rw http.ResponseWriter, req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	rw.Header().Set("X-Method", req.Method)
	rw.Header().Set("X-Content-Type", req.Header.Get(vars.ContentTypeHeader))
	rw.Header().Set("X-Authorization", req.Header.Get(vars.AuthorizationHeader))
	rw.Header().Set("X-Org", req.Header.Get(vars.OrgIDHeader))
	rw.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(rw, "%s|%s", req.URL.RequestURI(), body)
}

func TestBaseClient_Requests(t *testing.T) {
	testCases := []struct {
		name     string
		tcChecks func(t *testing.T, client *BaseClient)
	}{
		{
			name: "get",
			tcChecks: func(t *testing.T, client *BaseClient) {
				resp := client.Get(context.Background(), "/datasources", nil)
				require.NoError(t, resp.Error)
				assert.Equal(t, http.StatusOK, resp.Status)
				assert.Equal(t, http.MethodGet, resp.Header.Get("X-Method"))
				assert.Equal(t, "/api/datasources|", string(resp.Body))
				assert.Equal(t, Basic("admin", "admin").String(), client.Credentials().String())
				assert.True(t, resp.Success())
				assert.Greater(t, resp.Duration, time.Duration(0))
			},
		},
		{
			name: "post json",
			tcChecks: func(t *testing.T, client *BaseClient) {
				resp := client.Post(context.Background(), "/orgs", CreateOrgRequest{Name: "k6"}, nil)
				require.NoError(t, resp.Error)
				assert.Equal(t, http.MethodPost, resp.Header.Get("X-Method"))
				assert.Equal(t, vars.JSONType, resp.Header.Get("X-Content-Type"))
				assert.Equal(t, `/api/orgs|{"name":"k6"}`, string(resp.Body))
			},
		},
		{
			name: "post form",
			tcChecks: func(t *testing.T, client *BaseClient) {
				resp := client.FormPost(context.Background(), "/login", url.Values{"user": {"admin"}}, nil)
				require.NoError(t, resp.Error)
				assert.Equal(t, vars.FormType, resp.Header.Get("X-Content-Type"))
				assert.Equal(t, "/api/login|user=admin", string(resp.Body))
			},
		},
		{
			name: "delete",
			tcChecks: func(t *testing.T, client *BaseClient) {
				resp := client.Delete(context.Background(), "/orgs/2", nil)
				require.NoError(t, resp.Error)
				assert.Equal(t, http.MethodDelete, resp.Header.Get("X-Method"))
				assert.Equal(t, "/api/orgs/2|", string(resp.Body))
			},
		},
		{
			name: "credentials on every request",
			tcChecks: func(t *testing.T, client *BaseClient) {
				resp := client.Get(context.Background(), "/health", &Params{Header: http.Header{"X-Custom": {"1"}}})
				require.NoError(t, resp.Error)
				assert.Contains(t, resp.Header.Get("X-Authorization"), vars.BasicScheme+" ")
			},
		},
		{
			name: "unencodable body",
			tcChecks: func(t *testing.T, client *BaseClient) {
				resp := client.Post(context.Background(), "/orgs", make(chan int), nil)
				assert.Error(t, resp.Error)
				assert.Equal(t, 0, resp.Status)
				assert.True(t, resp.Failed())
			},
		},
		{
			name: "post string is a json string",
			tcChecks: func(t *testing.T, client *BaseClient) {
				resp := client.Post(context.Background(), "/x", `{"name":"k6"}`, nil)
				require.NoError(t, resp.Error)
				assert.Equal(t, vars.JSONType, resp.Header.Get("X-Content-Type"))
				assert.Equal(t, `/api/x|"{\"name\":\"k6\"}"`, string(resp.Body))
			},
		},
		{
			name: "post raw bytes as is",
			tcChecks: func(t *testing.T, client *BaseClient) {
				resp := client.Post(context.Background(), "/x", []byte(`{"name":"k6"}`), nil)
				require.NoError(t, resp.Error)
				assert.Equal(t, `/api/x|{"name":"k6"}`, string(resp.Body))

				resp = client.Post(context.Background(), "/x", json.RawMessage(`[1,2]`), nil)
				require.NoError(t, resp.Error)
				assert.Equal(t, `/api/x|[1,2]`, string(resp.Body))
			},
		},
		{
			name: "expected statuses reach the response",
			tcChecks: func(t *testing.T, client *BaseClient) {
				resp := client.Get(context.Background(), "/x", &Params{ExpectedStatuses: []int{http.StatusNotFound}})
				require.NoError(t, resp.Error)
				assert.Equal(t, []int{http.StatusNotFound}, resp.ExpectedStatuses)
				// 200 was not expected
				assert.True(t, resp.Failed())
			},
		},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(echo))
			defer server.Close()

			client := NewBaseClient(newTestTransport(), server.URL+"/", "/api/", Basic("admin", "admin"))

			c.tcChecks(t, client)
		})
	}
}

func TestResponse_Failed(t *testing.T) {
	testCases := []struct {
		name   string
		resp   *Response
		failed bool
	}{
		{name: "ok", resp: &Response{Status: http.StatusOK}, failed: false},
		{name: "redirect", resp: &Response{Status: http.StatusFound}, failed: false},
		{name: "not found", resp: &Response{Status: http.StatusNotFound}, failed: true},
		{name: "server error", resp: &Response{Status: http.StatusInternalServerError}, failed: true},
		{name: "transport error", resp: &Response{Error: fmt.Errorf("connection refused")}, failed: true},
		{
			name:   "expected not found",
			resp:   &Response{Status: http.StatusNotFound, ExpectedStatuses: []int{http.StatusOK, http.StatusNotFound}},
			failed: false,
		},
		{
			name:   "unexpected ok",
			resp:   &Response{Status: http.StatusOK, ExpectedStatuses: []int{http.StatusNotFound}},
			failed: true,
		},
		{
			name:   "transport error despite expected statuses",
			resp:   &Response{Error: fmt.Errorf("timeout"), ExpectedStatuses: []int{0}},
			failed: true,
		},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.failed, c.resp.Failed())
		})
	}
}

func TestBaseClient_TransportErrorIsData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(echo))
	serverURL := server.URL
	server.Close()

	client := NewBaseClient(newTestTransport(), serverURL, "", None())

	resp := client.Get(context.Background(), "/", nil)
	require.Error(t, resp.Error)
	assert.Equal(t, 0, resp.Status)
	assert.True(t, resp.Failed())
	assert.False(t, resp.Success())
	assert.Error(t, resp.JSON(&struct{}{}))
}

func TestBaseClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-req.Context().Done():
		}
	}))
	defer server.Close()

	client := NewBaseClient(newTestTransport(), server.URL, "", None())

	resp := client.Get(context.Background(), "/", &Params{Timeout: 50 * time.Millisecond})
	assert.Error(t, resp.Error)
	assert.Equal(t, 0, resp.Status)
}

func TestBaseClient_HooksRunAfterCredentials(t *testing.T) {
	m := &mockTransport{}
	m.On("Do", mock.MatchedBy(func(req *HTTPRequest) bool {
		return req.URL == "http://grafana/api/datasources" &&
			req.Header.Get(vars.AuthorizationHeader) == "Bearer from-hook" &&
			req.Header.Get(vars.OrgIDHeader) == "7"
	})).Return(&Response{Status: http.StatusOK})

	overrideAuth := func(header http.Header) {
		header.Set(vars.AuthorizationHeader, "Bearer from-hook")
	}
	setOrg := func(header http.Header) {
		header.Set(vars.OrgIDHeader, "7")
	}

	client := NewBaseClient(m, "http://grafana", "/api", Basic("admin", "admin"), overrideAuth, setOrg)
	resp := client.Get(context.Background(), "/datasources", nil)

	m.AssertExpectations(t)
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestBaseClient_ParamsHeaderNotMutated(t *testing.T) {
	m := &mockTransport{}
	m.On("Do", mock.Anything).Return(&Response{Status: http.StatusOK})

	params := &Params{Header: http.Header{"X-Custom": {"1"}}}
	client := NewBaseClient(m, "http://grafana", "", Bearer("token"))
	client.Post(context.Background(), "/", nil, params)

	assert.Equal(t, http.Header{"X-Custom": {"1"}}, params.Header)
}

func TestBaseClient_BatchOrder(t *testing.T) {
	testCases := []struct {
		name string
		n    int
	}{
		{name: "empty", n: 0},
		{name: "single", n: 1},
		{name: "many", n: 21},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
				// shuffle the completion order
				time.Sleep(time.Duration(rand.Intn(20)) * time.Millisecond)
				echo(rw, req)
			}))
			defer server.Close()

			client := NewBaseClient(newTestTransport(), server.URL, "", None())

			reqs := make([]Request, c.n)
			for i := range reqs {
				reqs[i] = Request{URL: fmt.Sprintf("/item/%d", i)}
			}

			responses := client.Batch(context.Background(), reqs)
			require.Len(t, responses, c.n)
			for i, resp := range responses {
				require.NoError(t, resp.Error)
				assert.Equal(t, fmt.Sprintf("/item/%d|", i), string(resp.Body))
				assert.Equal(t, http.MethodGet, resp.Header.Get("X-Method"))
				assert.Equal(t, vars.JSONType, resp.Header.Get("X-Content-Type"))
			}
		})
	}
}

func TestBaseClient_BatchEncodeErrorInline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(echo))
	defer server.Close()

	client := NewBaseClient(newTestTransport(), server.URL, "", None())

	responses := client.Batch(context.Background(), []Request{
		{Method: http.MethodPost, URL: "/first", Body: map[string]int{"a": 1}},
		{Method: http.MethodPost, URL: "/broken", Body: make(chan int)},
		{Method: http.MethodDelete, URL: "/third"},
	})
	require.Len(t, responses, 3)

	assert.Equal(t, `/first|{"a":1}`, string(responses[0].Body))
	assert.Error(t, responses[1].Error)
	assert.Equal(t, "/third|", string(responses[2].Body))
	assert.Equal(t, http.MethodDelete, responses[2].Header.Get("X-Method"))
}

func TestHTTPTransport_BatchParallelism(t *testing.T) {
	var inFlight, maxInFlight int32
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			max := atomic.LoadInt32(&maxInFlight)
			if n <= max || atomic.CompareAndSwapInt32(&maxInFlight, max, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		rw.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := NewHTTPTransport(5*time.Second, 10*time.Second, 2, nil)
	client := NewBaseClient(transport, server.URL, "", None())

	responses := client.Batch(context.Background(), make([]Request, 10))

	assert.LessOrEqual(t, atomic.LoadInt32(&maxInFlight), int32(2))
	for _, resp := range responses {
		assert.Equal(t, http.StatusOK, resp.Status)
	}
}

func TestHTTPTransport_Observer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(echo))
	defer server.Close()

	observed := make(chan *Response, 10)
	transport := NewHTTPTransport(0, 0, 0, func(resp *Response) { observed <- resp })
	client := NewBaseClient(transport, server.URL, "", None())

	client.Get(context.Background(), "/a", nil)
	client.Batch(context.Background(), []Request{{URL: "/b"}, {URL: "/c"}})

	assert.Len(t, observed, 3)
}
