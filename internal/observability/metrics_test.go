package observability

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daikw/angertranslator/internal/reliability"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics("anger")

	m.ObserveTranslation("karen", "ok", 120*time.Millisecond)
	m.ObserveTranslation("karen", "ok", 0)
	m.RateLimited()
	m.ExternalError("voice", reliability.New(reliability.KindInvalidCredential, "op", errors.New("401")))
	m.ExternalError("voice", nil)
	m.SegmentPlayed("bleep", 300*time.Millisecond)
	m.SequenceFinished("cancelled")
	m.WSMessage("in", "speak")

	out := scrape(t, m)
	for _, line := range []string{
		`anger_translations_total{outcome="ok",persona="karen"} 2`,
		`anger_rate_limit_rejections_total 1`,
		`anger_external_errors_total{component="voice",kind="invalid_credential"} 1`,
		`anger_segments_played_total{kind="bleep"} 1`,
		`anger_segment_duration_ms_count{kind="bleep"} 1`,
		`anger_playback_sequences_total{outcome="cancelled"} 1`,
		`anger_ws_messages_total{direction="in",type="speak"} 1`,
		`anger_generation_latency_ms_count 1`,
	} {
		assert.Contains(t, out, line)
	}
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	a := NewMetrics("anger")
	b := NewMetrics("anger")
	a.RateLimited()

	assert.Contains(t, scrape(t, a), "anger_rate_limit_rejections_total 1")
	assert.Contains(t, scrape(t, b), "anger_rate_limit_rejections_total 0")
}
