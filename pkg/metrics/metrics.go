package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 业务与 HTTP 指标集合
// 每个实例持有独立的 Registry，便于测试中重复创建
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	sessionsMaterialized prometheus.Counter
	timetableRejections  *prometheus.CounterVec
	attendanceMarked     *prometheus.CounterVec
	sessionTransitions   *prometheus.CounterVec
}

// New 创建并注册全部指标
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "http_requests_total",
			Help:      "HTTP 请求总数",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "campus",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP 请求耗时",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		sessionsMaterialized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "attendance_sessions_materialized_total",
			Help:      "按课表懒生成的考勤场次数",
		}),
		timetableRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "timetable_rejections_total",
			Help:      "课表条目校验拒绝次数",
		}, []string{"reason"}),
		attendanceMarked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "attendance_records_marked_total",
			Help:      "写入的出勤记录数",
		}, []string{"status"}),
		sessionTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campus",
			Name:      "attendance_session_transitions_total",
			Help:      "考勤场次状态变更次数",
		}, []string{"to"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpLatency,
		m.sessionsMaterialized,
		m.timetableRejections,
		m.attendanceMarked,
		m.sessionTransitions,
	)
	return m
}

// Handler 暴露 /metrics
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// ── 业务指标（nil 接收者安全，未启用指标时 Service 可传 nil） ──

// SessionsMaterialized 记录新生成的考勤场次数
func (m *Metrics) SessionsMaterialized(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsMaterialized.Add(float64(n))
}

// TimetableRejected 记录课表校验拒绝原因
func (m *Metrics) TimetableRejected(reason string) {
	if m == nil {
		return
	}
	m.timetableRejections.WithLabelValues(reason).Inc()
}

// AttendanceMarked 记录写入的出勤记录
func (m *Metrics) AttendanceMarked(status string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.attendanceMarked.WithLabelValues(status).Add(float64(n))
}

// SessionTransitioned 记录场次状态变更
func (m *Metrics) SessionTransitioned(to string) {
	if m == nil {
		return
	}
	m.sessionTransitions.WithLabelValues(to).Inc()
}

// Middleware 记录每个请求的次数与耗时，route 取路由模板避免高基数
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
