package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coronacion-creator/colegio-api/internal/service"
)

func postJSON(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/enrollments", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestEnrollmentHandlerEnrollMalformedBody(t *testing.T) {
	h := NewEnrollmentHandler(service.NewEnrollmentService(nil, nil, nil, validator.New(), zap.NewNop()))
	c, w := postJSON(t, "{not json")

	h.Enroll(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentHandlerEnrollMissingFields(t *testing.T) {
	h := NewEnrollmentHandler(service.NewEnrollmentService(nil, nil, nil, validator.New(), zap.NewNop()))
	c, w := postJSON(t, `{"student_id":"s1"}`)

	h.Enroll(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
