// FILE: internal/rules/rules.go
// Package rules adapts the chess rules library behind a small surface:
// legal-move checks, move application, SAN rendering, terminal outcomes.
// No chess logic lives here.
package rules

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"chesscoach/internal/core"
)

// Move is a coordinate move in UCI text form: source square, target
// square, optional promotion piece ("e2e4", "a7a8q").
type Move struct {
	From      string
	To        string
	Promotion string
}

// UCI returns the move's wire text.
func (m Move) UCI() string {
	return m.From + m.To + m.Promotion
}

func (m Move) String() string {
	return m.UCI()
}

// ParseMove validates UCI move syntax only. Legality against a
// position is checked at apply time.
func ParseMove(text string) (Move, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if len(text) < 4 || len(text) > 5 {
		return Move{}, fmt.Errorf("%w: %q", core.ErrIllegalMove, text)
	}
	for i := 0; i < 4; i += 2 {
		if text[i] < 'a' || text[i] > 'h' || text[i+1] < '1' || text[i+1] > '8' {
			return Move{}, fmt.Errorf("%w: %q", core.ErrIllegalMove, text)
		}
	}
	mv := Move{From: text[:2], To: text[2:4]}
	if len(text) == 5 {
		switch text[4] {
		case 'q', 'r', 'b', 'n':
			mv.Promotion = text[4:]
		default:
			return Move{}, fmt.Errorf("%w: bad promotion in %q", core.ErrIllegalMove, text)
		}
	}
	return mv, nil
}

// Board wraps a single game of the rules library. Not safe for
// concurrent use; callers serialize access.
type Board struct {
	game *chess.Game
}

// New returns a board at the standard starting position.
func New() *Board {
	return &Board{game: chess.NewGame()}
}

// FromFEN returns a board at the given position.
func FromFEN(fen string) (*Board, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("invalid FEN %q: %w", fen, err)
	}
	return &Board{game: chess.NewGame(opt)}, nil
}

// FEN returns the current position in FEN form. This is the snapshot
// format shared with the engine gateway.
func (b *Board) FEN() string {
	return b.game.Position().String()
}

// Turn returns the side to move.
func (b *Board) Turn() core.Color {
	if b.game.Position().Turn() == chess.White {
		return core.ColorWhite
	}
	return core.ColorBlack
}

// LegalMoves returns every legal move in the current position.
func (b *Board) LegalMoves() []Move {
	valid := b.game.ValidMoves()
	moves := make([]Move, 0, len(valid))
	for _, vm := range valid {
		moves = append(moves, fromLibMove(vm))
	}
	return moves
}

// IsLegal reports whether the move is playable in the current position.
func (b *Board) IsLegal(m Move) bool {
	_, err := b.decode(m)
	return err == nil
}

// SAN renders the move in standard algebraic notation against the
// current position. Must be called before Apply.
func (b *Board) SAN(m Move) (string, error) {
	mv, err := b.decode(m)
	if err != nil {
		return "", err
	}
	return chess.AlgebraicNotation{}.Encode(b.game.Position(), mv), nil
}

// Apply plays the move. Illegal moves return ErrIllegalMove and leave
// the board untouched.
func (b *Board) Apply(m Move) error {
	mv, err := b.decode(m)
	if err != nil {
		return err
	}
	if err := b.game.Move(mv); err != nil {
		return fmt.Errorf("%w: %s", core.ErrIllegalMove, m.UCI())
	}
	return nil
}

// PreviewFEN returns the FEN reached by playing the move, without
// mutating the board. Used to score a move before committing it.
func (b *Board) PreviewFEN(m Move) (string, error) {
	mv, err := b.decode(m)
	if err != nil {
		return "", err
	}
	next := b.game.Position().Update(mv)
	if next == nil {
		return "", fmt.Errorf("%w: %s", core.ErrIllegalMove, m.UCI())
	}
	return next.String(), nil
}

// Outcome returns the terminal verdict. The bool is false while the
// game is still in progress.
func (b *Board) Outcome() (core.Result, bool) {
	switch b.game.Outcome() {
	case chess.WhiteWon:
		return core.ResultWhiteWins, true
	case chess.BlackWon:
		return core.ResultBlackWins, true
	case chess.Draw:
		if b.game.Method() == chess.Stalemate {
			return core.ResultStalemate, true
		}
		return core.ResultDraw, true
	default:
		return core.ResultNone, false
	}
}

// Clone returns an independent board at the same position. Move
// history before the clone point is not carried over.
func (b *Board) Clone() (*Board, error) {
	return FromFEN(b.FEN())
}

// decode resolves the UCI text against the current position. Illegal
// or malformed moves yield ErrIllegalMove.
func (b *Board) decode(m Move) (*chess.Move, error) {
	mv, err := chess.UCINotation{}.Decode(b.game.Position(), m.UCI())
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrIllegalMove, m.UCI())
	}
	for _, vm := range b.game.ValidMoves() {
		if vm.S1() == mv.S1() && vm.S2() == mv.S2() && vm.Promo() == mv.Promo() {
			return vm, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", core.ErrIllegalMove, m.UCI())
}

func fromLibMove(mv *chess.Move) Move {
	m := Move{From: mv.S1().String(), To: mv.S2().String()}
	if mv.Promo() != chess.NoPieceType {
		m.Promotion = mv.Promo().String()
	}
	return m
}
