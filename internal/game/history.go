// FILE: internal/game/history.go
package game

import "chesscoach/internal/core"

// History is the append-only move ledger of one match. Plies are
// assigned on append, starting at 1, so the ledger and the position
// advance in lock step. A restart gets a fresh History.
type History struct {
	records []core.MoveRecord
}

func NewHistory() *History {
	return &History{}
}

// Append adds a record with the next ply number and returns it.
func (h *History) Append(r core.MoveRecord) core.MoveRecord {
	r.Ply = len(h.records) + 1
	h.records = append(h.records, r)
	return r
}

func (h *History) Len() int {
	return len(h.records)
}

// All returns a copy of the full ledger in play order.
func (h *History) All() []core.MoveRecord {
	out := make([]core.MoveRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Recent returns a copy of the last n records, fewer if the ledger is
// shorter.
func (h *History) Recent(n int) []core.MoveRecord {
	if n <= 0 {
		return nil
	}
	if n > len(h.records) {
		n = len(h.records)
	}
	out := make([]core.MoveRecord, n)
	copy(out, h.records[len(h.records)-n:])
	return out
}

// Last returns the most recent record, if any.
func (h *History) Last() (core.MoveRecord, bool) {
	if len(h.records) == 0 {
		return core.MoveRecord{}, false
	}
	return h.records[len(h.records)-1], true
}

// Summary tallies ratings across the ledger.
func (h *History) Summary() core.MatchSummary {
	var s core.MatchSummary
	for _, r := range h.records {
		switch r.Rating {
		case core.RatingBrilliant:
			s.Brilliant++
		case core.RatingGreat:
			s.Great++
		case core.RatingGood:
			s.Good++
		case core.RatingInaccuracy:
			s.Inaccuracy++
		case core.RatingMistake:
			s.Mistake++
		case core.RatingBlunder:
			s.Blunder++
		}
	}
	return s
}
