// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層・ワーカー・HTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordVisitRecorded(open bool)
	RecordVisitClosed(minutes int)
	RecordVersionConflict(op string)
	RecordSessionsPruned(count int)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	visitsRecorded   *prometheus.CounterVec
	visitsClosed     prometheus.Counter
	minutesTracked   prometheus.Counter
	versionConflicts *prometheus.CounterVec
	sessionsPruned   prometheus.Counter
	httpStatus       *prometheus.CounterVec
	requestLatency   prometheus.Histogram
}

var _ MetricsCollector = (*Collector)(nil)

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		visitsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitetrack_visits_recorded_total",
			Help: "記録された訪問の合計数（kind=open|closed）",
		}, []string{"kind"}),
		visitsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sitetrack_visits_closed_total",
			Help: "終了された未終了訪問の合計数",
		}),
		minutesTracked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sitetrack_minutes_tracked_total",
			Help: "終了処理で加算された滞在分数の合計",
		}),
		versionConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitetrack_version_conflicts_total",
			Help: "Siteの条件付き書き込みが競合した回数",
		}, []string{"op"}),
		sessionsPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sitetrack_sessions_pruned_total",
			Help: "ワーカーが削除した放置訪問の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sitetrack_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sitetrack_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.visitsRecorded,
		c.visitsClosed,
		c.minutesTracked,
		c.versionConflicts,
		c.sessionsPruned,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordVisitRecorded は訪問の記録を計上する。openは未終了訪問として記録されたかどうか。
func (c *Collector) RecordVisitRecorded(open bool) {
	kind := "closed"
	if open {
		kind = "open"
	}
	c.visitsRecorded.WithLabelValues(kind).Inc()
}

// RecordVisitClosed は訪問の終了と加算された分数を記録する。
func (c *Collector) RecordVisitClosed(minutes int) {
	c.visitsClosed.Inc()
	c.minutesTracked.Add(float64(minutes))
}

// RecordVersionConflict は条件付き書き込みの競合を記録する。
func (c *Collector) RecordVersionConflict(op string) {
	c.versionConflicts.WithLabelValues(op).Inc()
}

// RecordSessionsPruned は削除された放置訪問数を記録する。
func (c *Collector) RecordSessionsPruned(count int) {
	c.sessionsPruned.Add(float64(count))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// ワーカープロセスで単独のメトリクスサーバーを立てる場合に使う。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
