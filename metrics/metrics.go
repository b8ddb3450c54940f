// Package metrics holds the Prometheus counters for tournament operations.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	TournamentsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tournament_created_total", Help: "Tournaments created, by format"},
		[]string{"format"},
	)
	RoundsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tournament_rounds_started_total", Help: "Rounds and brackets generated, by format"},
		[]string{"format"},
	)
	ResultsEntered = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tournament_results_entered_total", Help: "Match results reported, by format"},
		[]string{"format"},
	)
	ResultsErased = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tournament_results_erased_total", Help: "Match results erased, by format"},
		[]string{"format"},
	)
	PlayersRemoved = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tournament_players_removed_total", Help: "Players removed, by format"},
		[]string{"format"},
	)
	Rollbacks = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "tournament_rollbacks_total", Help: "Operations rolled back after a pairing failure"},
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		TournamentsCreated, RoundsStarted, ResultsEntered, ResultsErased, PlayersRemoved, Rollbacks,
	}
}

// Register adds the tournament counters to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return fmt.Errorf("register collector: %w", err)
		}
	}
	return nil
}

// WriteTextfile dumps the counters in the node_exporter textfile format.
func WriteTextfile(path string) error {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
