package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareline"
	"shareline/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()
	durable, err := store.NewBadgerTier(store.InMemoryBadgerConfig())
	require.NoError(t, err)
	fast, err := store.NewFileTier(t.TempDir(), 1<<20)
	require.NoError(t, err)
	kv, err := store.NewTiered(fast, durable)
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	srv := New(kv, shareline.DefaultPolicy(), nil)
	return srv, srv.Router()
}

func do(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seedRegistry(t *testing.T, srv *Server) {
	t.Helper()
	jan := shareline.NewDate(2024, 1, 1)
	reg := shareline.NewRegistry().Merge(jan, []shareline.Record{
		{Name: "ALPHA DII DESK", PAN: "AAACA0001A", Category: "DII", Shares: shareline.Q(1000), FundGroup: "ALPHA DII"},
		{Name: "BETA OVERSEAS", PAN: "AAACB0001B", Category: "FII", Shares: shareline.Q(2000), FundGroup: "BETA OVERSEAS"},
	})
	require.NoError(t, shareline.SaveRegistry(context.Background(), srv.kv, reg))
}

func TestHealth(t *testing.T) {
	_, router := newTestServer(t)
	w := do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGroupLifecycle(t *testing.T) {
	srv, router := newTestServer(t)
	seedRegistry(t, srv)

	// create
	w := do(t, router, http.MethodPost, "/groups", gin.H{
		"name":    "Desks",
		"members": []gin.H{{"pan": "AAACA0001A", "name": "ALPHA DII DESK"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var created shareline.GroupDef
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "DII", created.Category, "single shared category is adopted")

	// list
	w = do(t, router, http.MethodGet, "/groups", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Groups []shareline.GroupDef `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Groups, 1)

	// update under its own name is not a duplicate
	w = do(t, router, http.MethodPut, "/groups/"+created.ID, gin.H{
		"name": "Desks",
		"members": []gin.H{
			{"pan": "AAACA0001A", "name": "ALPHA DII DESK"},
		},
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// delete
	w = do(t, router, http.MethodDelete, "/groups/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodGet, "/groups", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Empty(t, listed.Groups)
}

func TestGroupDuplicateNameConflict(t *testing.T) {
	srv, router := newTestServer(t)
	seedRegistry(t, srv)

	body := gin.H{
		"name":    "Desks",
		"members": []gin.H{{"pan": "AAACA0001A", "name": "ALPHA DII DESK"}},
	}
	require.Equal(t, http.StatusOK, do(t, router, http.MethodPost, "/groups", body).Code)

	w := do(t, router, http.MethodPost, "/groups", gin.H{
		"name":    "desks", // case-insensitive collision
		"members": []gin.H{{"pan": "AAACB0001B", "name": "BETA OVERSEAS"}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "duplicate_name")
}

func TestGroupAmbiguousCategory(t *testing.T) {
	srv, router := newTestServer(t)
	seedRegistry(t, srv)

	mixed := gin.H{
		"name": "Mixed",
		"members": []gin.H{
			{"pan": "AAACA0001A", "name": "ALPHA DII DESK"},
			{"pan": "AAACB0001B", "name": "BETA OVERSEAS"},
		},
	}
	w := do(t, router, http.MethodPost, "/groups", mixed)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Error      string   `json:"error"`
		Categories []string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "category_required", resp.Error)
	assert.Equal(t, []string{"DII", "FII"}, resp.Categories, "candidates come back sorted")

	// re-prompted with an explicit category
	mixed["category"] = "FII"
	w = do(t, router, http.MethodPost, "/groups", mixed)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestGroupUpdateUnknownID(t *testing.T) {
	_, router := newTestServer(t)
	w := do(t, router, http.MethodPut, "/groups/nope", gin.H{"name": "X"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGroupRejectsMissingName(t *testing.T) {
	_, router := newTestServer(t)
	w := do(t, router, http.MethodPost, "/groups", gin.H{"members": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBulkLoad(t *testing.T) {
	srv, router := newTestServer(t)

	rows := []gin.H{
		{"date": "2024-01-01", "name": "AQUA FUND", "pan": "AAACA0001A", "category": "Mutual Funds", "shares": "10,000"},
		{"date": "2024-02-01", "name": "AQUA FUND", "pan": "AAACA0001A", "category": "Mutual Funds", "shares": "15,000"},
		{"date": "2024-01-01", "name": "BLUEPOOL", "pan": "AAACB0001B", "category": "FII", "shares": "5000"},
	}
	w := do(t, router, http.MethodPost, "/snapshots", rows)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	reg, err := shareline.LoadRegistry(context.Background(), srv.kv)
	require.NoError(t, err)

	e, ok := reg.Get("AAACA0001A")
	require.True(t, ok)
	jan := shareline.MustParse("2024-01-01")
	feb := shareline.MustParse("2024-02-01")
	q, _ := e.SharesOn(jan)
	assert.True(t, q.Equal(shareline.Q(10000)))
	q, _ = e.SharesOn(feb)
	assert.True(t, q.Equal(shareline.Q(15000)))

	uploads := reg.Uploads()
	require.Len(t, uploads, 2, "one audit entry per snapshot date")
}

func TestBulkLoadInvalidDate(t *testing.T) {
	_, router := newTestServer(t)
	w := do(t, router, http.MethodPost, "/snapshots", []gin.H{
		{"date": "not-a-date", "name": "X", "shares": "1"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_date")
}
