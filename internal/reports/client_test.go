package reports

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crowdpulse/backend/internal/aggregate"
)

func TestRenderReturnsHostedURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/render", r.URL.Path)
		var req RenderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, FormatCSV, req.Format)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://files.example.com/report.csv"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zap.NewNop())
	result, err := c.Render(context.Background(), RenderRequest{Format: FormatCSV, FileName: "test"})
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/report.csv", result.URL)
	assert.Empty(t, result.Bytes)
}

func TestRenderReturnsRawFileBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("a,b\n1,2\n"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zap.NewNop())
	result, err := c.Render(context.Background(), RenderRequest{Format: FormatCSV})
	require.NoError(t, err)
	assert.Empty(t, result.URL)
	assert.Equal(t, []byte("a,b\n1,2\n"), result.Bytes)
}

func TestRenderNonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zap.NewNop())
	_, err := c.Render(context.Background(), RenderRequest{Format: FormatPDF})
	assert.Error(t, err)
}

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat(FormatCSV))
	assert.True(t, ValidFormat(FormatPDF))
	assert.False(t, ValidFormat("xlsx"))
}

func TestListingTableShape(t *testing.T) {
	columns, rows := ListingTable([]aggregate.Row{
		{Name: "North", StaffCount: 5, AvailableStaffCount: 2, UnavailableStaffCount: 3, IncidentsCount: 7, ResolvedAvgTimeSec: 61.4},
	})
	assert.Len(t, columns, 6)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"North", "5", "2", "3", "7", "61"}, rows[0])
}
