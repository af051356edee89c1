package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/pkg/config"
)

type memorySink struct {
	mu      sync.Mutex
	entries []*models.AuditLog
	fail    int
}

func (s *memorySink) Append(_ context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail > 0 {
		s.fail--
		return errors.New("sink unavailable")
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memorySink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func auditConfig() config.AuditConfig {
	return config.AuditConfig{Enabled: true, Workers: 1, BufferSize: 8, MaxRetries: 3, RetryDelay: 10 * time.Millisecond}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestRecorderDelivers(t *testing.T) {
	sink := &memorySink{}
	recorder := NewRecorder(sink, auditConfig(), zap.NewNop())
	recorder.Start(context.Background())
	defer recorder.Stop()

	actor := "user-1"
	recorder.Record(Entry{
		Actor:       &actor,
		Action:      "PROCESS_PAYMENT",
		Module:      models.AuditModulePayments,
		Description: "installment inst-1 paid",
		Success:     true,
		Metadata:    map[string]string{"installment_id": "inst-1"},
	})

	waitFor(t, func() bool { return sink.count() == 1 })
	sink.mu.Lock()
	entry := sink.entries[0]
	sink.mu.Unlock()
	require.Equal(t, "PROCESS_PAYMENT", entry.Action)
	assert.Equal(t, models.AuditModulePayments, entry.Module)
	assert.True(t, entry.Success)
	assert.NotEmpty(t, entry.ID)
	assert.JSONEq(t, `{"installment_id":"inst-1"}`, string(entry.Metadata))
}

func TestRecorderRetriesFailedDelivery(t *testing.T) {
	sink := &memorySink{fail: 2}
	recorder := NewRecorder(sink, auditConfig(), zap.NewNop())
	recorder.Start(context.Background())
	defer recorder.Stop()

	recorder.Record(Entry{Action: "ENROLL", Module: models.AuditModuleEnrollments, Success: true})

	waitFor(t, func() bool { return sink.count() == 1 })
}

func TestRecorderDisabledIsNoop(t *testing.T) {
	sink := &memorySink{}
	cfg := auditConfig()
	cfg.Enabled = false
	recorder := NewRecorder(sink, cfg, zap.NewNop())
	recorder.Start(context.Background())
	defer recorder.Stop()

	recorder.Record(Entry{Action: "ENROLL", Module: models.AuditModuleEnrollments})

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, sink.count())
}
