// Package metrics provides Prometheus metrics for the recommendation engine.
//
// Metrics Categories:
//   - Recommendations: served lists by strategy, failures, list sizes, latency
//   - Feedback: submissions by liked flag
//   - Similarity: edges written by provenance
//   - Store: circuit breaker state transitions
//
// Usage:
//
//	RecordRecommendation("mixed", 5, 12*time.Millisecond)
//	RecordRecommendationFailure("social")
//	RecordSimilarityEdges("natural", 3)
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Recommendation Metrics

	// RecommendationsTotal counts recommendation lists served by strategy.
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamesoul_recommendations_total",
			Help: "Total number of recommendation lists served",
		},
		[]string{"strategy"},
	)

	// RecommendationFailuresTotal counts requests served empty because of an error.
	RecommendationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamesoul_recommendation_failures_total",
			Help: "Total number of recommendation requests that failed and were served empty",
		},
		[]string{"strategy"},
	)

	// RecommendationSize tracks how many items each list carries.
	RecommendationSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gamesoul_recommendation_size",
			Help:    "Number of items in served recommendation lists",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
		[]string{"strategy"},
	)

	// RecommendationDuration tracks recommendation latency.
	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gamesoul_recommendation_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"strategy"},
	)

	// Feedback Metrics

	// FeedbackTotal counts feedback submissions by liked flag.
	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamesoul_feedback_total",
			Help: "Total number of feedback submissions",
		},
		[]string{"liked"},
	)

	// Similarity Metrics

	// SimilarityEdgesTotal counts similarity edges written by provenance.
	SimilarityEdgesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamesoul_similarity_edges_total",
			Help: "Total number of similarity edges upserted",
		},
		[]string{"provenance"},
	)

	// Store Metrics

	// StoreBreakerTransitionsTotal counts circuit breaker state changes.
	StoreBreakerTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamesoul_store_breaker_transitions_total",
			Help: "Total number of store circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordRecommendation records a served list.
func RecordRecommendation(strategy string, size int, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(strategy).Inc()
	RecommendationSize.WithLabelValues(strategy).Observe(float64(size))
	RecommendationDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordRecommendationFailure records a request served empty because of an error.
func RecordRecommendationFailure(strategy string) {
	RecommendationFailuresTotal.WithLabelValues(strategy).Inc()
}

// RecordFeedback records a feedback submission.
func RecordFeedback(liked bool) {
	FeedbackTotal.WithLabelValues(strconv.FormatBool(liked)).Inc()
}

// RecordSimilarityEdges records n similarity edges of the given provenance.
func RecordSimilarityEdges(provenance string, n int) {
	if n <= 0 {
		return
	}
	SimilarityEdgesTotal.WithLabelValues(provenance).Add(float64(n))
}

// RecordBreakerTransition records a store breaker state change.
func RecordBreakerTransition(name, from, to string) {
	StoreBreakerTransitionsTotal.WithLabelValues(name, from, to).Inc()
}

// Serve exposes the default registry on addr at /metrics until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
