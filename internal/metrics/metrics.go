package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder exports HTTP and submission metrics to Prometheus
type Recorder struct {
	requestDuration  *prometheus.HistogramVec
	submissions      *prometheus.CounterVec
	submissionErrors *prometheus.CounterVec
	submissionScores prometheus.Histogram
	liveFeeds        prometheus.Gauge
}

// NewRecorder registers the collectors on reg (the default registerer when nil)
func NewRecorder(namespace string, reg prometheus.Registerer) (*Recorder, error) {
	if namespace == "" {
		namespace = "createform"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_recorded_total",
			Help:      "Submissions recorded, by how the outcome was matched.",
		}, []string{"match"}),
		submissionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submission_errors_total",
			Help:      "Rejected or failed submission attempts by reason.",
		}, []string{"reason"}),
		submissionScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submission_total_score",
			Help:      "Distribution of recorded submission totals.",
			Buckets:   prometheus.LinearBuckets(-20, 10, 15),
		}),
		liveFeeds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_feeds_active",
			Help:      "Open dashboard submission subscriptions.",
		}),
	}

	var err error
	if r.requestDuration, err = register(reg, r.requestDuration); err != nil {
		return nil, err
	}
	if r.submissions, err = register(reg, r.submissions); err != nil {
		return nil, err
	}
	if r.submissionErrors, err = register(reg, r.submissionErrors); err != nil {
		return nil, err
	}
	if r.submissionScores, err = register(reg, r.submissionScores); err != nil {
		return nil, err
	}
	if r.liveFeeds, err = register(reg, r.liveFeeds); err != nil {
		return nil, err
	}
	return r, nil
}

// register returns the already registered collector when one with the same description exists
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

// ObserveRequest tracks request latency
func (r *Recorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// SubmissionRecorded counts a stored submission
func (r *Recorder) SubmissionRecorded(match string, total int) {
	if r == nil {
		return
	}
	r.submissions.WithLabelValues(match).Inc()
	r.submissionScores.Observe(float64(total))
}

// SubmissionRejected counts a submission that was not stored
func (r *Recorder) SubmissionRejected(reason string) {
	if r == nil {
		return
	}
	r.submissionErrors.WithLabelValues(reason).Inc()
}

// FeedOpened and FeedClosed track live dashboard subscriptions
func (r *Recorder) FeedOpened() {
	if r == nil {
		return
	}
	r.liveFeeds.Inc()
}

func (r *Recorder) FeedClosed() {
	if r == nil {
		return
	}
	r.liveFeeds.Dec()
}
