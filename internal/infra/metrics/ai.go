package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		generationTokensIn,
		generationTokensOut,
		generationLatencyMs,
		retrievalLatencyMs,
		retrievalPassages,
	)
}

var (
	generationTokensIn = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_tokens_in",
			Help: "Sum of prompt (input) tokens per provider/model.",
		},
		[]string{"provider", "model"},
	)

	generationTokensOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_tokens_out",
			Help: "Sum of completion (output) tokens per provider/model.",
		},
		[]string{"provider", "model"},
	)

	generationLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_latency_ms",
			Help:    "Generation call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"provider", "model", "success"},
	)

	retrievalLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "retrieval_latency_ms",
			Help:    "Vector search latency distribution in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600, 3000},
		},
		[]string{"success"},
	)

	retrievalPassages = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "retrieval_passages",
			Help:    "Number of passages returned per retrieval call.",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)
)

func ObserveGeneration(provider, model string, tokensIn, tokensOut, latencyMs int, success bool) {
	lbl := []string{norm(provider), norm(model)}
	generationTokensIn.WithLabelValues(lbl...).Add(float64(tokensIn))
	generationTokensOut.WithLabelValues(lbl...).Add(float64(tokensOut))
	generationLatencyMs.WithLabelValues(norm(provider), norm(model), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func ObserveRetrieval(passages, latencyMs int, success bool) {
	retrievalLatencyMs.WithLabelValues(strconv.FormatBool(success)).Observe(float64(latencyMs))
	if success {
		retrievalPassages.Observe(float64(passages))
	}
}
