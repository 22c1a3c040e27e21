package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FAQGenerations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "faq_generation_total",
			Help: "FAQ generation runs by outcome (success or the failed stage)",
		},
		[]string{"outcome"},
	)

	FAQGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "faq_generation_duration_seconds",
			Help:    "Duration of FAQ generation runs in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
	)

	FAQGeneratedItems = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "faq_generated_items_total",
			Help: "FAQ rows stored by generation runs",
		},
	)

	ChatbotAnswers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_answers_total",
			Help: "Chatbot answers by outcome",
		},
		[]string{"outcome"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Duration of chat completion calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		},
		[]string{"purpose", "outcome"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)
)
