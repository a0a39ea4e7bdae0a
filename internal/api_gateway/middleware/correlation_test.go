package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ohada-ledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		header   string
		wantKeep bool
	}{
		{name: "Missing", header: "", wantKeep: false},
		{name: "UUID", header: uuid.New().String(), wantKeep: true},
		{name: "Opaque", header: "gw-01:req_42.7", wantKeep: true},
		{name: "Spaces", header: "drop table accounts", wantKeep: false},
		{name: "TooLong", header: strings.Repeat("a", maxCorrelationIDLength+1), wantKeep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CorrelationID())

			var fromGin, fromRequest string
			router.GET("/api/v1/classes", func(c *gin.Context) {
				fromGin = GetCorrelationID(c)
				fromRequest = shared.CorrelationID(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/classes", nil)
			if tt.header != "" {
				req.Header.Set(CorrelationIDHeader, tt.header)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			got := rr.Header().Get(CorrelationIDHeader)
			assert.Equal(t, got, fromGin)
			assert.Equal(t, got, fromRequest)

			if tt.wantKeep {
				assert.Equal(t, tt.header, got)
				return
			}
			_, err := uuid.Parse(got)
			assert.NoError(t, err, "replacement id should be a UUID")
		})
	}
}

func TestGetCorrelationID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetCorrelationID(c))

	c.Set(CorrelationIDKey, 12345)
	assert.Empty(t, GetCorrelationID(c))

	c.Set(CorrelationIDKey, "corr-9")
	assert.Equal(t, "corr-9", GetCorrelationID(c))
}
