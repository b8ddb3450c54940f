package models

import "fmt"

// Format is the pairing format for the first stage of a tournament.
type Format string

const (
	FormatElimination Format = "elimination"
	FormatSwiss       Format = "swiss"
	FormatRoundRobin  Format = "round robin"
)

func (f Format) Valid() bool {
	switch f {
	case FormatElimination, FormatSwiss, FormatRoundRobin:
		return true
	}
	return false
}

// Sorting says whether players are ordered by seed, and in which direction.
type Sorting string

const (
	SortingNone       Sorting = "none"
	SortingAscending  Sorting = "ascending"
	SortingDescending Sorting = "descending"
)

// PlayoffMode is the bracket used after the Swiss or round-robin stage.
type PlayoffMode string

const (
	PlayoffsNone              PlayoffMode = "none"
	PlayoffsSingleElimination PlayoffMode = "single elimination"
	PlayoffsDoubleElimination PlayoffMode = "double elimination"
)

// CutType decides who advances to the playoffs.
type CutType string

const (
	CutNone   CutType = "none"
	CutRank   CutType = "rank"
	CutPoints CutType = "points"
)

// Cut removes players before playoffs. A zero Limit disables the cut.
type Cut struct {
	Type  CutType `json:"type" yaml:"type"`
	Limit float64 `json:"limit" yaml:"limit"`
}

// Tiebreaker names a ranking metric, used in a tournament's precedence list.
type Tiebreaker string

const (
	TiebreakMedianBuchholz    Tiebreaker = "median buchholz"
	TiebreakSolkoff           Tiebreaker = "solkoff"
	TiebreakSonnebornBerger   Tiebreaker = "sonneborn berger"
	TiebreakCumulative        Tiebreaker = "cumulative"
	TiebreakVersus            Tiebreaker = "versus"
	TiebreakGameWinPct        Tiebreaker = "game win percentage"
	TiebreakOppGameWinPct     Tiebreaker = "opponent game win percentage"
	TiebreakOppMatchWinPct    Tiebreaker = "opponent match win percentage"
	TiebreakOppOppMatchWinPct Tiebreaker = "opponent opponent match win percentage"
	TiebreakOppCumulative     Tiebreaker = "opponent cumulative"
	TiebreakMatchWinPct       Tiebreaker = "match win percentage"
)

var knownTiebreakers = map[Tiebreaker]struct{}{
	TiebreakMedianBuchholz:    {},
	TiebreakSolkoff:           {},
	TiebreakSonnebornBerger:   {},
	TiebreakCumulative:        {},
	TiebreakVersus:            {},
	TiebreakGameWinPct:        {},
	TiebreakOppGameWinPct:     {},
	TiebreakOppMatchWinPct:    {},
	TiebreakOppOppMatchWinPct: {},
	TiebreakOppCumulative:     {},
	TiebreakMatchWinPct:       {},
}

func ValidateTiebreakers(list []Tiebreaker) error {
	for _, tb := range list {
		if _, ok := knownTiebreakers[tb]; !ok {
			return fmt.Errorf("unknown tiebreaker %q", tb)
		}
	}
	return nil
}

// MissingResults is how a late Swiss entry is credited for rounds already played.
type MissingResults string

const (
	MissingResultsLosses MissingResults = "losses"
	MissingResultsByes   MissingResults = "byes"
)
