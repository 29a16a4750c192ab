package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preflight/internal/service"
	"preflight/pkg/predictor"
)

func TestWriteCycleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{
			name:       "unknown job",
			err:        fmt.Errorf("%w: daily_etl", service.ErrJobNotFound),
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "missing capacity snapshot",
			err:        predictor.ErrNoCapacity,
			wantStatus: http.StatusFailedDependency,
		},
		{
			name:       "schema violation",
			err:        &predictor.SchemaViolation{Reason: "missing category data_quality"},
			wantStatus: http.StatusBadGateway,
			wantKind:   "schema_violation",
		},
		{
			name:       "parse syntax failure",
			err:        &predictor.ParseSyntaxError{Excerpt: "the pipeline looks fine", Err: errors.New("invalid character 't'")},
			wantStatus: http.StatusBadGateway,
			wantKind:   "parse_syntax",
		},
		{
			name:       "model boundary failure",
			err:        &predictor.ServiceError{Err: errors.New("connection reset")},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "unclassified failure",
			err:        errors.New("disk full"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/predictions/daily_etl", nil)

			writeCycleError(c, "daily_etl", tc.err)

			assert.Equal(t, tc.wantStatus, w.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			if tc.wantKind != "" {
				assert.Equal(t, tc.wantKind, body["kind"])
			} else {
				assert.NotContains(t, body, "kind")
			}
		})
	}
}
