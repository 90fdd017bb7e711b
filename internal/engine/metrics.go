package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// opsTotal counts committed engine mutations by operation name.
var opsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "bookkeep",
	Subsystem: "engine",
	Name:      "operations_total",
	Help:      "Committed engine mutations by operation.",
}, []string{"op"})
