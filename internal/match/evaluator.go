// FILE: internal/match/evaluator.go
// Package match coordinates one match per scheduler: turn phases,
// asynchronous engine requests, move rating, and the multi-match
// service used by the API server.
package match

import (
	"context"
	"time"

	"go.uber.org/zap"

	"chesscoach/internal/core"
	"chesscoach/internal/engine"
)

const (
	// DefaultEvalDepth is the fixed search depth used for scoring.
	// Scoring quality is independent of the opponent difficulty.
	DefaultEvalDepth = 12

	evalTimeout = 10 * time.Second
)

// Evaluator rates a single move from two engine evaluations: the
// position before the move and the position after it.
type Evaluator struct {
	gw    engine.Gateway
	depth int
	log   *zap.Logger
}

// NewEvaluator builds an evaluator over the gateway. A nil gateway is
// allowed; every score then degrades to the neutral rating.
func NewEvaluator(gw engine.Gateway, depth int, log *zap.Logger) *Evaluator {
	if depth <= 0 {
		depth = DefaultEvalDepth
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{gw: gw, depth: depth, log: log}
}

// Score rates the move that took beforeFEN to afterFEN, played by
// mover. Engine scores arrive relative to the side to move, so both
// are normalized to White's point of view before the delta is signed
// for the mover. Any gateway failure degrades to (Good, 0); scoring
// never blocks the match.
func (e *Evaluator) Score(ctx context.Context, beforeFEN, afterFEN string, mover core.Color) (core.Rating, int) {
	if e.gw == nil {
		return core.RatingGood, 0
	}

	before, err := e.evaluate(ctx, beforeFEN)
	if err != nil {
		e.log.Warn("scoring degraded", zap.String("fen", beforeFEN), zap.Error(err))
		return core.RatingGood, 0
	}
	after, err := e.evaluate(ctx, afterFEN)
	if err != nil {
		e.log.Warn("scoring degraded", zap.String("fen", afterFEN), zap.Error(err))
		return core.RatingGood, 0
	}

	// beforeFEN has the mover to move, afterFEN the opponent.
	beforeWhite := whitePOV(before, mover)
	afterWhite := whitePOV(after, core.OppositeColor(mover))

	delta := afterWhite - beforeWhite
	if mover == core.ColorBlack {
		delta = -delta
	}
	return core.ClassifyDelta(delta), delta
}

func (e *Evaluator) evaluate(ctx context.Context, fen string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, evalTimeout)
	defer cancel()
	return e.gw.Evaluate(ctx, fen, e.depth)
}

// whitePOV flips a side-to-move-relative score to White's view.
func whitePOV(score int, sideToMove core.Color) int {
	if sideToMove == core.ColorWhite {
		return score
	}
	return -score
}
