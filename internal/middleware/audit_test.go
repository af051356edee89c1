package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coronacion-creator/colegio-api/internal/audit"
	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/pkg/config"
	"github.com/coronacion-creator/colegio-api/pkg/response"
)

type recordingSink struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func (s *recordingSink) Append(_ context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *recordingSink) last() (*models.AuditLog, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == 0 {
		return nil, false
	}
	return s.entries[len(s.entries)-1], true
}

func startRecorder(t *testing.T) (*audit.Recorder, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	cfg := config.AuditConfig{Enabled: true, Workers: 1, BufferSize: 8, MaxRetries: 1, RetryDelay: 10 * time.Millisecond}
	recorder := audit.NewRecorder(sink, cfg, zap.NewNop())
	recorder.Start(context.Background())
	t.Cleanup(recorder.Stop)
	return recorder, sink
}

func awaitEntry(t *testing.T, sink *recordingSink) *models.AuditLog {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if entry, ok := sink.last(); ok {
			return entry
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("audit entry not delivered in time")
	return nil
}

func auditRouter(recorder *audit.Recorder, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/enrollments", Audit(recorder, "enroll", models.AuditModuleEnrollments), handler)
	return r
}

func TestAuditRecordsRejectedOperationAsFailure(t *testing.T) {
	recorder, sink := startRecorder(t)
	r := auditRouter(recorder, func(c *gin.Context) {
		response.Operation(c, models.Rejected("student already enrolled in course for period"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/enrollments", nil))

	require.Equal(t, http.StatusOK, w.Code)
	entry := awaitEntry(t, sink)
	require.False(t, entry.Success)
	assert.Equal(t, "enroll", entry.Action)
	assert.Equal(t, models.AuditModuleEnrollments, entry.Module)
}

func TestAuditRecordsAcceptedOperationAsSuccess(t *testing.T) {
	recorder, sink := startRecorder(t)
	r := auditRouter(recorder, func(c *gin.Context) {
		response.Operation(c, models.Accepted("enrollment created", gin.H{"id": "enr-1"}))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/enrollments", nil))

	require.Equal(t, http.StatusOK, w.Code)
	entry := awaitEntry(t, sink)
	assert.True(t, entry.Success)
}

func TestAuditFallsBackToStatusWithoutOutcome(t *testing.T) {
	recorder, sink := startRecorder(t)
	r := auditRouter(recorder, func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/enrollments", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	entry := awaitEntry(t, sink)
	assert.False(t, entry.Success)
}
