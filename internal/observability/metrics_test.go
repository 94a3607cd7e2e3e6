package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_PreInitializesSeries(t *testing.T) {
	m := NewMetrics("1.0.0")

	assert.Equal(t, len(knownOutcomes), testutil.CollectAndCount(m.runs))
	assert.Equal(t, len(knownDecisions), testutil.CollectAndCount(m.decisions))
	assert.Equal(t, len(knownMutations), testutil.CollectAndCount(m.comments))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.info.WithLabelValues("1.0.0")))
}

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics("dev")

	m.RecordRun("apply")
	m.RecordRun("apply")
	m.RecordRun("failed")
	m.RecordDecision("minor")
	m.RecordTagPublished()
	m.RecordWorkflowsDispatched(2)
	m.RecordWorkflowsDispatched(0)
	m.RecordCommentMutation("update")
	m.ObserveRunDuration(1500 * time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.runs.WithLabelValues("apply")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.runs.WithLabelValues("failed")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.runs.WithLabelValues("preview")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.decisions.WithLabelValues("minor")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.tags))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.dispatched))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.comments.WithLabelValues("update")))
	assert.Equal(t, 1.5, testutil.ToFloat64(m.runDuration))
}

func TestMetrics_WriteToTextfile(t *testing.T) {
	m := NewMetrics("dev")
	m.RecordRun("preview")
	path := filepath.Join(t.TempDir(), "pr_label_tag.prom")

	require.NoError(t, m.WriteToTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(raw)
	assert.Contains(t, out, `pr_label_tag_runs_total{outcome="preview"} 1`)
	assert.Contains(t, out, "# TYPE pr_label_tag_tags_published_total counter")
	assert.True(t, strings.Contains(out, `pr_label_tag_info{version="dev"} 1`))
}

func TestMetrics_WriteToTextfile_BadPath(t *testing.T) {
	m := NewMetrics("dev")

	err := m.WriteToTextfile(filepath.Join(t.TempDir(), "missing", "m.prom"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing metrics to")
}

func TestMetrics_Registry(t *testing.T) {
	m := NewMetrics("dev")

	families, err := m.Registry().Gather()

	require.NoError(t, err)
	assert.Len(t, families, 7)
}
