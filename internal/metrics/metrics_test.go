package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAdapter(t *testing.T) {
	before := testutil.ToFloat64(adapterOutcomes.WithLabelValues("nrm", "not_found"))
	ObserveAdapter("nrm", "not_found", 120*time.Millisecond)
	after := testutil.ToFloat64(adapterOutcomes.WithLabelValues("nrm", "not_found"))

	assert.Equal(t, before+1, after)
}

func TestIncFetchAttempt(t *testing.T) {
	before := testutil.ToFloat64(fetchAttempts.WithLabelValues("ukmoths.org.uk", "retry"))
	IncFetchAttempt("ukmoths.org.uk", "retry")
	IncFetchAttempt("ukmoths.org.uk", "retry")

	assert.Equal(t, before+2, testutil.ToFloat64(fetchAttempts.WithLabelValues("ukmoths.org.uk", "retry")))
}

func TestIncQueries(t *testing.T) {
	before := testutil.ToFloat64(queriesTotal)
	IncQueries()
	assert.Equal(t, before+1, testutil.ToFloat64(queriesTotal))
}

func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register()
}

func TestWriteTextfile(t *testing.T) {
	ObserveAdapter("wikipedia", "success", time.Second)

	path := filepath.Join(t.TempDir(), "lepidex.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "lepidex_adapter_outcomes_total")
}
