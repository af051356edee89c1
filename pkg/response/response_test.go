package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coronacion-creator/colegio-api/internal/models"
	appErrors "github.com/coronacion-creator/colegio-api/pkg/errors"
)

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestOperationRejectionRidesHTTP200(t *testing.T) {
	c, w := testContext(t)

	Operation(c, models.Rejected("insufficient stock"))

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data models.OperationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.Success)
	assert.Equal(t, "insufficient stock", envelope.Data.Message)
}

func TestOperationAcceptedCarriesPayload(t *testing.T) {
	c, w := testContext(t)

	Operation(c, models.Accepted("payment processed", map[string]interface{}{"amount": 350.0}))

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data models.OperationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Success)
	assert.NotNil(t, envelope.Data.Data)
}

func TestErrorUsesTypedStatus(t *testing.T) {
	c, w := testContext(t)

	Error(c, appErrors.Clone(appErrors.ErrContention, ""))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var envelope Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrContention.Code, envelope.Error.Code)
}

func TestJSONIncludesPagination(t *testing.T) {
	c, w := testContext(t)

	JSON(c, http.StatusOK, []string{"a"}, &models.Pagination{Page: 2, PageSize: 10, TotalCount: 31})

	require.Equal(t, http.StatusOK, w.Code)
	var envelope Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 2, envelope.Pagination.Page)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
