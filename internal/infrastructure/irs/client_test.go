package irs_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnavadev/fraud-watch/internal/infrastructure/irs"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *irs.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return irs.NewClient(irs.ClientConfig{BaseURL: srv.URL, State: "MN"}, nil)
}

func TestClient_Lookup_Found(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/nonprofits/api/v2/search.json", r.URL.Path)
		assert.Equal(t, "Shell Holdings", r.URL.Query().Get("q"))
		assert.Equal(t, "MN", r.URL.Query().Get("state[id]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_results":1,"organizations":[{"ein":411234567,"name":"SHELL HOLDINGS","revenue_amount":650000}]}`))
	})

	match, err := client.Lookup(context.Background(), "Shell Holdings Inc")

	require.NoError(t, err)
	assert.True(t, match.Found)
	assert.Equal(t, "411234567", match.EIN)
	assert.Equal(t, "SHELL HOLDINGS", match.Name)
	require.NotNil(t, match.Revenue)
	assert.True(t, decimal.NewFromInt(650_000).Equal(*match.Revenue))
}

func TestClient_Lookup_NoRevenue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"organizations":[{"ein":1,"name":"LITTLE SPROUTS CHILDCARE"}]}`))
	})

	match, err := client.Lookup(context.Background(), "Little Sprouts Childcare")

	require.NoError(t, err)
	assert.True(t, match.Found)
	assert.Nil(t, match.Revenue)
}

func TestClient_Lookup_NoMatch(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		holder  string
		wantErr bool
	}{
		{name: "dissimilar first hit", status: http.StatusOK, holder: "Northside Kids LLC",
			body: `{"organizations":[{"ein":2,"name":"MINNESOTA COUNCIL OF CHURCHES"}]}`},
		{name: "no organizations", status: http.StatusOK, holder: "Northside Kids LLC",
			body: `{"organizations":[]}`},
		{name: "not found status", status: http.StatusNotFound, holder: "Northside Kids LLC",
			body: `{}`},
		{name: "server error", status: http.StatusInternalServerError, holder: "Northside Kids LLC",
			body: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			match, err := client.Lookup(context.Background(), tt.holder)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.False(t, match.Found)
		})
	}
}

func TestClient_Lookup_BlankName(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("registry must not be called for a blank name")
	})

	match, err := client.Lookup(context.Background(), " Inc ")

	require.NoError(t, err)
	assert.False(t, match.Found)
}
