package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCounts(t *testing.T) {
	r := NewRegistry()

	r.ObserveLogin("success")
	r.ObserveLogin("success")
	r.ObserveLogin("invalid_credentials")
	r.ObserveRequest(http.MethodPost, "/api/authentication/login", http.StatusOK, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.LoginAttempts.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.LoginAttempts.WithLabelValues("invalid_credentials")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/api/authentication/login", "200")))

	families, err := r.Gatherer().Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["auth_http_request_duration_seconds"])
	assert.True(t, names["go_goroutines"])
}
