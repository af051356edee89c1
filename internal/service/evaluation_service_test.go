package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coronacion-creator/colegio-api/internal/models"
	"github.com/coronacion-creator/colegio-api/pkg/config"
)

type mockEvaluationRepo struct {
	recorded []models.Evaluation
	status   *models.AcademicStatus
}

func (m *mockEvaluationRepo) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Evaluation, error) {
	return m.recorded, nil
}

func (m *mockEvaluationRepo) GetAcademicStatus(ctx context.Context, enrollmentID string) (*models.AcademicStatus, error) {
	if m.status == nil {
		return nil, sql.ErrNoRows
	}
	return m.status, nil
}

func (m *mockEvaluationRepo) Record(ctx context.Context, eval *models.Evaluation, passingScore float64) (*models.AcademicStatus, error) {
	m.recorded = append(m.recorded, *eval)
	var sum, weights float64
	for _, e := range m.recorded {
		sum += e.Score * e.Weight
		weights += e.Weight
	}
	average := sum / weights
	state := models.AcademicStatusFailing
	if average >= passingScore {
		state = models.AcademicStatusPassing
	}
	m.status = &models.AcademicStatus{EnrollmentID: eval.EnrollmentID, Average: average, State: state}
	return m.status, nil
}

type mockEnrollmentReader struct {
	enrollments map[string]*models.Enrollment
}

func (m *mockEnrollmentReader) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	if e, ok := m.enrollments[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

func vigesimal() config.GradingConfig {
	return config.GradingConfig{MinScore: 0, MaxScore: 20, PassingScore: 10.5}
}

func activeEnrollments() *mockEnrollmentReader {
	return &mockEnrollmentReader{enrollments: map[string]*models.Enrollment{
		"e1": {ID: "e1", Status: models.EnrollmentStatusActive},
	}}
}

func TestEvaluationServiceRecord(t *testing.T) {
	repo := &mockEvaluationRepo{}
	svc := NewEvaluationService(repo, activeEnrollments(), vigesimal(), validator.New(), zap.NewNop())

	result, err := svc.Record(context.Background(), RecordEvaluationRequest{EnrollmentID: "e1", Type: "EXAM", Score: 16, Weight: 2})
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, repo.recorded, 1)
	assert.Equal(t, models.AcademicStatusPassing, repo.status.State)

	result, err = svc.Record(context.Background(), RecordEvaluationRequest{EnrollmentID: "e1", Type: "HOMEWORK", Score: 2, Weight: 6})
	require.NoError(t, err)
	assert.True(t, result.Success)
	// (16*2 + 2*6) / 8 = 5.5, below the passing mark.
	assert.InDelta(t, 5.5, repo.status.Average, 0.001)
	assert.Equal(t, models.AcademicStatusFailing, repo.status.State)
}

func TestEvaluationServiceRecordScoreOutOfRange(t *testing.T) {
	repo := &mockEvaluationRepo{}
	svc := NewEvaluationService(repo, activeEnrollments(), vigesimal(), validator.New(), zap.NewNop())

	result, err := svc.Record(context.Background(), RecordEvaluationRequest{EnrollmentID: "e1", Type: "EXAM", Score: 25, Weight: 1})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, repo.recorded)

	result, err = svc.Record(context.Background(), RecordEvaluationRequest{EnrollmentID: "e1", Type: "EXAM", Score: -1, Weight: 1})
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestEvaluationServiceRecordNonPositiveWeight(t *testing.T) {
	repo := &mockEvaluationRepo{}
	svc := NewEvaluationService(repo, activeEnrollments(), vigesimal(), validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), RecordEvaluationRequest{EnrollmentID: "e1", Type: "EXAM", Score: 12, Weight: 0})
	require.Error(t, err)
	assert.Empty(t, repo.recorded)
}

func TestEvaluationServiceRecordInactiveEnrollment(t *testing.T) {
	repo := &mockEvaluationRepo{}
	enrollments := &mockEnrollmentReader{enrollments: map[string]*models.Enrollment{
		"e1": {ID: "e1", Status: models.EnrollmentStatusInactive},
	}}
	svc := NewEvaluationService(repo, enrollments, vigesimal(), validator.New(), zap.NewNop())

	result, err := svc.Record(context.Background(), RecordEvaluationRequest{EnrollmentID: "e1", Type: "EXAM", Score: 12, Weight: 1})
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestEvaluationServiceGetAcademicStatusMissing(t *testing.T) {
	repo := &mockEvaluationRepo{}
	svc := NewEvaluationService(repo, activeEnrollments(), vigesimal(), validator.New(), zap.NewNop())

	_, err := svc.GetAcademicStatus(context.Background(), "e1")
	require.Error(t, err)
}
