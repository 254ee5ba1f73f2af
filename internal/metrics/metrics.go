package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	QueryFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_query_fallbacks_total",
			Help: "Indexed queries that failed and were rerun unindexed with an in-memory sort",
		},
		[]string{"collection"},
	)
	UnsupportedMetrics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_unsupported_metric_total",
			Help: "Progress computations with no rule registered for the category/unit pair",
		},
		[]string{"metric"},
	)
	ProgressEvaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_evaluations_total",
			Help: "Progress computations by progress type",
		},
		[]string{"type"},
	)
	AchievementsAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievements_awarded_total",
			Help: "Achievements newly added to a user's ledger",
		},
		[]string{"achievement"},
	)
	Completions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifecycle_completions_total",
			Help: "Enrollments and goals transitioned to completed",
		},
		[]string{"kind"},
	)
)

// Register adds the domain collectors to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(QueryFallbacks)
	reg.MustRegister(UnsupportedMetrics)
	reg.MustRegister(ProgressEvaluations)
	reg.MustRegister(AchievementsAwarded)
	reg.MustRegister(Completions)
}
