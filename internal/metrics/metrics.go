// Package metrics содержит прометеевские счётчики сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// GateDecisions считает решения навигационного шлюза по исходу и цели.
var GateDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "nosugar_gate_decisions_total",
	Help: "Navigation gate decisions by outcome and target route.",
}, []string{"outcome", "target"})

// StreakResets считает сбросы стрика ежедневных отметок по неактивности.
var StreakResets = promauto.NewCounter(prometheus.CounterOpts{
	Name: "nosugar_checkin_streak_resets_total",
	Help: "Check-in streaks reset after the inactivity window.",
})

// Celebrations считает показанные праздничные экраны.
var Celebrations = promauto.NewCounter(prometheus.CounterOpts{
	Name: "nosugar_checkin_celebrations_total",
	Help: "Celebration screens signalled to clients.",
})

// Relapses считает зафиксированные срывы.
var Relapses = promauto.NewCounter(prometheus.CounterOpts{
	Name: "nosugar_relapses_total",
	Help: "Recorded relapses.",
})
