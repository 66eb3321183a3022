// Package metrics holds the Prometheus collectors for study activity, saves,
// AI calls and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "edusync"

// Metrics owns a private registry so several instances can coexist (tests,
// multiple servers in one process). All recorders are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	XPAwarded            prometheus.Counter
	LevelUps             prometheus.Counter
	AchievementsUnlocked *prometheus.CounterVec
	TasksCompleted       prometheus.Counter
	PomodorosCompleted   prometheus.Counter
	FlashcardsCreated    prometheus.Counter

	Saves        *prometheus.CounterVec
	SaveDuration prometheus.Histogram

	AIRequests *prometheus.CounterVec
	AIDuration *prometheus.HistogramVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New creates and registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		XPAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "xp_awarded_total",
			Help:      "Total experience points awarded",
		}),
		LevelUps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "level_ups_total",
			Help:      "Total number of level-up notifications",
		}),
		AchievementsUnlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "achievements_unlocked_total",
			Help:      "Total achievement unlocks by achievement id",
		}, []string{"achievement"}),
		TasksCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_completed_total",
			Help:      "Total first-time task completions",
		}),
		PomodorosCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pomodoros_completed_total",
			Help:      "Total completed pomodoro sessions",
		}),
		FlashcardsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flashcards_created_total",
			Help:      "Total flashcards created, manually or generated",
		}),
		Saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_saves_total",
			Help:      "Total snapshot saves by result",
		}, []string{"result"}),
		SaveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_save_duration_seconds",
			Help:      "Snapshot save duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		AIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_requests_total",
			Help:      "Total AI generation requests by model and result",
		}, []string{"model", "result"}),
		AIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ai_request_duration_seconds",
			Help:      "AI generation duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"model"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.XPAwarded, m.LevelUps, m.AchievementsUnlocked,
		m.TasksCompleted, m.PomodorosCompleted, m.FlashcardsCreated,
		m.Saves, m.SaveDuration,
		m.AIRequests, m.AIDuration,
		m.HTTPRequests, m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ---------------------------------------------------------------------------
// Recorders
// ---------------------------------------------------------------------------

// ObserveXP records an XP award and the level-ups it produced.
func (m *Metrics) ObserveXP(amount, levelUps int) {
	if m == nil {
		return
	}
	if amount > 0 {
		m.XPAwarded.Add(float64(amount))
	}
	if levelUps > 0 {
		m.LevelUps.Add(float64(levelUps))
	}
}

// ObserveUnlock counts one achievement unlock.
func (m *Metrics) ObserveUnlock(id string) {
	if m == nil {
		return
	}
	m.AchievementsUnlocked.WithLabelValues(id).Inc()
}

// ObserveTaskCompleted counts a first-time completion.
func (m *Metrics) ObserveTaskCompleted() {
	if m == nil {
		return
	}
	m.TasksCompleted.Inc()
}

// ObservePomodoro counts a finished pomodoro.
func (m *Metrics) ObservePomodoro() {
	if m == nil {
		return
	}
	m.PomodorosCompleted.Inc()
}

// ObserveFlashcards counts n new cards.
func (m *Metrics) ObserveFlashcards(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.FlashcardsCreated.Add(float64(n))
}

// ObserveSave records one snapshot save.
func (m *Metrics) ObserveSave(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.Saves.WithLabelValues(result(err)).Inc()
	m.SaveDuration.Observe(d.Seconds())
}

// ObserveAI records one generation call.
func (m *Metrics) ObserveAI(model string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.AIRequests.WithLabelValues(model, result(err)).Inc()
	m.AIDuration.WithLabelValues(model).Observe(d.Seconds())
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
