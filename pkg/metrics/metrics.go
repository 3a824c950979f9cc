package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Inventory metrics
	ProjectsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "netlens_projects_total",
			Help: "Total number of projects",
		},
	)

	DevicesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netlens_devices_total",
			Help: "Total number of parsed devices by vendor",
		},
		[]string{"vendor"},
	)

	DocumentsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "netlens_documents_total",
			Help: "Total number of document families",
		},
	)

	UsersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "netlens_users_total",
			Help: "Total number of users",
		},
	)

	// Upload pipeline metrics
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netlens_uploads_total",
			Help: "Total number of uploaded versions by folder kind",
		},
		[]string{"folder"},
	)

	UploadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "netlens_upload_bytes_total",
			Help: "Total uploaded bytes",
		},
	)

	ParseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netlens_parse_duration_seconds",
			Help:    "Configuration parse duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"vendor"},
	)

	// Analysis metrics
	AnalysisJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netlens_analysis_jobs_total",
			Help: "Total analysis jobs by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	AnalysisBusyRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "netlens_analysis_busy_rejections_total",
			Help: "Total analysis submissions rejected because the project slot was busy",
		},
	)

	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netlens_analysis_duration_seconds",
			Help:    "Analysis job duration in seconds including the adapter call",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"kind"},
	)

	// API metrics
	APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netlens_api_requests_total",
			Help: "Total number of API requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netlens_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(ProjectsTotal)
	prometheus.MustRegister(DevicesTotal)
	prometheus.MustRegister(DocumentsTotal)
	prometheus.MustRegister(UsersTotal)
	prometheus.MustRegister(UploadsTotal)
	prometheus.MustRegister(UploadBytes)
	prometheus.MustRegister(ParseDuration)
	prometheus.MustRegister(AnalysisJobsTotal)
	prometheus.MustRegister(AnalysisBusyRejections)
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(APIRequestsTotal)
	prometheus.MustRegister(APIRequestDuration)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
