package status

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"switchmap/internal/config"
	"switchmap/internal/pkg/database"
	repo "switchmap/internal/repo/mysql/topology"
	"switchmap/internal/service/topology/ingest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	report  *ingest.Report
	running bool
}

func (f *fakeSource) LastReport() *ingest.Report { return f.report }
func (f *fakeSource) Running() bool { return f.running }

func newRouter(t *testing.T, source ReportSource) (*gin.Engine, *repo.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewSQLiteConnection(&config.SQLiteConfig{
		Path:     filepath.Join(t.TempDir(), "status.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(db))
	store := repo.NewStore(db, 0)
	require.NoError(t, store.Events.Bootstrap(context.Background()))

	r := gin.New()
	NewStatusHandler(store, source).Register(r)
	return r, store
}

func TestHealthz(t *testing.T) {
	r, store := newRouter(t, &fakeSource{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	sqlDB, err := store.DB().DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStatus(t *testing.T) {
	source := &fakeSource{running: true, report: &ingest.Report{EventID: 7, Done: 2}}
	r, _ := newRouter(t, source)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string `json:"status"`
		Data   struct {
			Running    bool   `json:"running"`
			RootEvent  uint64 `json:"root_event"`
			LastReport struct {
				EventID uint64 `json:"event_id"`
				Done    int    `json:"done"`
			} `json:"last_report"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.True(t, body.Data.Running)
	assert.Equal(t, uint64(1), body.Data.RootEvent)
	assert.Equal(t, uint64(7), body.Data.LastReport.EventID)
	assert.Equal(t, 2, body.Data.LastReport.Done)
}
