package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "buildlab"

// Registry 独立注册表，只暴露本服务指标与进程指标
var Registry = prometheus.NewRegistry()

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	verificationsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "student_verifications_created_total",
		Help:      "Student verification records created, by method and initial status.",
	}, []string{"method", "status"})

	providerFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_provider_fallbacks_total",
		Help:      "Third-party verification failures that fell back to domain classification.",
	})

	discountValidations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "discount_validations_total",
		Help:      "Discount code validations by result.",
	}, []string{"result"})

	discountRedemptions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "discount_redemptions_total",
		Help:      "Discount usage recordings by result.",
	}, []string{"result"})

	rateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_requests_total",
		Help:      "Requests rejected by the redis rate limiter, by rule prefix.",
	}, []string{"rule"})

	adminActions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "student_verification_admin_actions_total",
		Help:      "Manual review actions.",
	}, []string{"action"})
)

func init() {
	Registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
		httpRequests,
		httpDuration,
		verificationsCreated,
		providerFallbacks,
		discountValidations,
		discountRedemptions,
		rateLimited,
		adminActions,
	)
}

// Handler /metrics 处理器
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveHTTP 记录一次 HTTP 请求
func ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// VerificationCreated 新建认证记录
func VerificationCreated(method, status string) {
	verificationsCreated.WithLabelValues(method, status).Inc()
}

// ProviderFallback 第三方核验降级
func ProviderFallback() {
	providerFallbacks.Inc()
}

// DiscountValidated 折扣码校验结果：valid / invalid / expired
func DiscountValidated(result string) {
	discountValidations.WithLabelValues(result).Inc()
}

// DiscountRedeemed 使用记录结果：recorded / duplicate
func DiscountRedeemed(result string) {
	discountRedemptions.WithLabelValues(result).Inc()
}

// AdminAction 人工审核动作
func AdminAction(action string) {
	adminActions.WithLabelValues(action).Inc()
}

// RateLimited 限流拒绝
func RateLimited(rule string) {
	rateLimited.WithLabelValues(rule).Inc()
}
