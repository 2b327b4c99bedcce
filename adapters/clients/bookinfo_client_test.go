package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fakes "github.com/ubirch/ubirch-load-test/adapters/mock"
)

func TestBookinfoClient(t *testing.T) {
	server := httptest.NewServer(fakes.NewBookinfo(0).Handler())
	defer server.Close()

	client := NewBookinfoClient(newTestTransport(), server.URL+"/", None())
	ctx := context.Background()

	testCases := []struct {
		name     string
		tcChecks func(t *testing.T)
	}{
		{
			name: "productpage",
			tcChecks: func(t *testing.T) {
				resp := client.Productpage.Visit(ctx)
				require.NoError(t, resp.Error)
				assert.Equal(t, http.StatusOK, resp.Status)
				assert.Contains(t, string(resp.Body), "productpage")
			},
		},
		{
			name: "details",
			tcChecks: func(t *testing.T) {
				resp := client.Details.Get(ctx, 0)
				var details struct {
					ID     int    `json:"id"`
					Author string `json:"author"`
				}
				require.NoError(t, resp.JSON(&details))
				assert.Equal(t, "William Shakespeare", details.Author)
			},
		},
		{
			name: "reviews",
			tcChecks: func(t *testing.T) {
				resp := client.Reviews.Get(ctx, 0)
				assert.Equal(t, http.StatusOK, resp.Status)
			},
		},
		{
			name: "ratings",
			tcChecks: func(t *testing.T) {
				resp := client.Ratings.Get(ctx, 0)
				var ratings struct {
					Ratings map[string]int `json:"ratings"`
				}
				require.NoError(t, resp.JSON(&ratings))
				assert.Len(t, ratings.Ratings, 2)
			},
		},
		{
			name: "batch",
			tcChecks: func(t *testing.T) {
				responses := client.Batch(ctx, []Request{
					{URL: "/productpage"},
					{URL: "/details/0"},
					{URL: "/ratings/not-a-number"},
				})
				require.Len(t, responses, 3)
				assert.Equal(t, http.StatusOK, responses[0].Status)
				assert.Equal(t, http.StatusOK, responses[1].Status)
				assert.Equal(t, http.StatusBadRequest, responses[2].Status)
			},
		},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			c.tcChecks(t)
		})
	}
}

func TestBookinfoClient_Latency(t *testing.T) {
	server := httptest.NewServer(fakes.NewBookinfo(50 * time.Millisecond).Handler())
	defer server.Close()

	client := NewBookinfoClient(newTestTransport(), server.URL, None())

	resp := client.Productpage.Visit(context.Background())
	require.NoError(t, resp.Error)
	assert.GreaterOrEqual(t, resp.Duration, 50*time.Millisecond)
}
