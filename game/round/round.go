// Package round contains the history of the rounds of a game.
package round

import "github.com/jacobpatterson1549/prisoners-dilemma/game"

// Ledger is an append-only log of completed rounds, ordered by round number.
// The zero value is an empty ledger.
type Ledger struct {
	records []game.RoundRecord
}

// Append adds the record of the next round.  Rounds are numbered from 1 in the order they are appended.
func (l *Ledger) Append(decisions [2]game.Decision, points [2]int) game.RoundRecord {
	r := game.RoundRecord{
		Round:     len(l.records) + 1,
		Decisions: decisions,
		Points:    points,
	}
	l.records = append(l.records, r)
	return r
}

// Len is the number of completed rounds.
func (l Ledger) Len() int {
	return len(l.records)
}

// Records returns a copy of the completed rounds.
func (l Ledger) Records() []game.RoundRecord {
	if len(l.records) == 0 {
		return nil
	}
	records := make([]game.RoundRecord, len(l.records))
	copy(records, l.records)
	return records
}

// Totals sums the points awarded to each player over all rounds.
func (l Ledger) Totals() [2]int {
	var totals [2]int
	for _, r := range l.records {
		totals[0] += r.Points[0]
		totals[1] += r.Points[1]
	}
	return totals
}
