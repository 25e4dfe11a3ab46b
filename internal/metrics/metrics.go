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
// 認証サービス・ミドルウェア・ワーカーから利用する。
type MetricsCollector interface {
	RecordAuthSuccess()
	RecordAuthFailure(reason string)
	RecordSessionPurged()
	RecordHTTPStatus(statusCode int)
	RecordCheckResult(result string)
	RecordCheckLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	authSuccess   prometheus.Counter
	authFail      *prometheus.CounterVec
	sessionPurged prometheus.Counter
	httpStatus    *prometheus.CounterVec
	checkResult   *prometheus.CounterVec
	checkLatency  prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentguard_auth_success_total",
			Help: "セッション解決成功の合計数",
		}),
		authFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contentguard_auth_fail_total",
			Help: "セッション解決失敗の理由別合計数",
		}, []string{"reason"}),
		sessionPurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "contentguard_session_purged_total",
			Help: "読み取り時に破棄された期限切れセッションの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contentguard_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		checkResult: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contentguard_check_result_total",
			Help: "ターゲット到達性チェックの結果別合計数",
		}, []string{"result"}),
		checkLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "contentguard_check_latency_seconds",
			Help:    "ターゲット到達性チェックのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.authSuccess,
		c.authFail,
		c.sessionPurged,
		c.httpStatus,
		c.checkResult,
		c.checkLatency,
	)

	return c
}

// RecordAuthSuccess はセッション解決成功を記録する。
func (c *Collector) RecordAuthSuccess() {
	c.authSuccess.Inc()
}

// RecordAuthFailure はセッション解決失敗を理由付きで記録する。
func (c *Collector) RecordAuthFailure(reason string) {
	c.authFail.WithLabelValues(reason).Inc()
}

// RecordSessionPurged は期限切れセッションの破棄を記録する。
func (c *Collector) RecordSessionPurged() {
	c.sessionPurged.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordCheckResult はチェック結果（removed, failed, unchanged等）を記録する。
func (c *Collector) RecordCheckResult(result string) {
	c.checkResult.WithLabelValues(result).Inc()
}

// RecordCheckLatency はチェックのレイテンシを記録する。
func (c *Collector) RecordCheckLatency(duration time.Duration) {
	c.checkLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
