package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "impact", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "impact", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	ContentRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "impact", Name: "content_requests_total", Help: "Section requests by section, method and status code."},
		[]string{"section", "method", "code"},
	)
	StorageFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "impact", Name: "content_storage_failures_total", Help: "Content store errors by operation."},
		[]string{"op"},
	)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "impact", Name: "content_cache_lookups_total", Help: "Section cache lookups by result (hit|miss|error)."},
		[]string{"result"},
	)
	UploadsSigned = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "impact", Name: "uploads_signed_total", Help: "Number of presigned upload URLs issued."},
	)
	Logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "impact", Name: "auth_logins_total", Help: "Login attempts by result."},
		[]string{"result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(ContentRequests)
	reg.MustRegister(StorageFailures)
	reg.MustRegister(CacheLookups)
	reg.MustRegister(UploadsSigned)
	reg.MustRegister(Logins)
}
