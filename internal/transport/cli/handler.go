// FILE: internal/transport/cli/handler.go
// Package cli drives a single local match from terminal commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"chesscoach/internal/board"
	"chesscoach/internal/cli"
	"chesscoach/internal/core"
	"chesscoach/internal/match"
	"chesscoach/internal/rules"
)

type Handler struct {
	sched       *match.Scheduler
	view        *cli.CLI
	engineReady bool
	lastMove    string
}

func New(sched *match.Scheduler, view *cli.CLI, engineReady bool) *Handler {
	return &Handler{
		sched:       sched,
		view:        view,
		engineReady: engineReady,
	}
}

// Greet prints the welcome banner and the starting position.
func (h *Handler) Greet() {
	preset := h.sched.Preset()
	h.view.ShowWelcome(preset.Level, preset.Name, h.engineReady)
	h.displayBoard()
}

// Run is the main command loop. Blocks until quit or EOF.
func (h *Handler) Run() {
	h.Greet()

	for {
		h.view.ShowPrompt(h.Prompt())

		cmd, err := h.view.GetCommand()
		if err != nil {
			break
		}
		if !h.ProcessCommand(cmd) {
			break
		}
	}
}

// Prompt reflects the scheduler phase and side to move.
func (h *Handler) Prompt() string {
	switch h.sched.Phase() {
	case match.PhaseTerminal:
		return "[over]> "
	case match.PhaseFaulted:
		return "[fault]> "
	default:
		return fmt.Sprintf("[%s]> ", h.sched.Turn())
	}
}

// ProcessCommand executes one command, returning false to exit.
func (h *Handler) ProcessCommand(cmd *cli.Command) bool {
	switch cmd.Type {
	case cli.CmdQuit:
		return false

	case cli.CmdNone:
		return true

	case cli.CmdNew:
		if err := h.sched.Restart(); err != nil {
			h.view.ShowError(err)
			return true
		}
		h.lastMove = ""
		h.view.ShowMessage("New match started.")
		h.displayBoard()

	case cli.CmdMove:
		h.handleMove(cmd.Args[0])

	case cli.CmdLevel:
		h.handleLevel(cmd.Args)

	case cli.CmdHistory:
		h.view.ShowHistory(h.sched.History().All(), h.sched.FEN())

	case cli.CmdBoard:
		h.displayBoard()

	case cli.CmdColor:
		if len(cmd.Args) < 1 {
			h.view.ShowMessage("Usage: color <off|brown|green|gray>")
			return true
		}
		if err := h.view.SetTheme(cli.ColorTheme(cmd.Args[0])); err != nil {
			h.view.ShowError(err)
		} else {
			h.displayBoard()
		}

	case cli.CmdHelp:
		h.view.ShowHelp()
	}

	return true
}

func (h *Handler) handleMove(text string) {
	mv, err := rules.ParseMove(text)
	if err != nil {
		h.view.ShowError(fmt.Errorf("invalid move %q: use UCI form like e2e4", text))
		return
	}

	if err := h.sched.PlayMove(mv); err != nil {
		switch {
		case errors.Is(err, core.ErrGameOver):
			h.view.ShowMessage("The match is over. Start a new one with 'new'.")
		case errors.Is(err, core.ErrSessionFault):
			h.view.ShowMessage("The engine failed; this match cannot continue. Start a new one with 'new'.")
		default:
			h.view.ShowError(err)
		}
		return
	}
	h.lastMove = mv.UCI()

	if h.engineReady {
		h.view.ShowMessage("Thinking...")
	}

	events, err := h.sched.ResolveTurn(context.Background())
	for _, ev := range events {
		switch ev.Kind {
		case match.EventMoveRated:
			h.view.ShowRatedMove("You", ev.Record)
		case match.EventOpponentMoved:
			h.view.ShowRatedMove("Engine", ev.Record)
			h.lastMove = ev.Record.UCI
		}
	}
	if err != nil {
		h.view.ShowError(err)
		h.view.ShowMessage("Start a new match with 'new'.")
		return
	}

	h.displayBoard()

	if h.sched.Phase() == match.PhaseTerminal {
		h.view.ShowGameOver(h.sched.Result(), h.sched.History().Summary())
	}
}

func (h *Handler) handleLevel(args []string) {
	if len(args) < 1 {
		p := h.sched.Preset()
		h.view.ShowMessage(fmt.Sprintf("Current level: %d (%s). Usage: level <1-%d>", p.Level, p.Name, len(core.Presets)))
		return
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		h.view.ShowMessage(fmt.Sprintf("Usage: level <1-%d>", len(core.Presets)))
		return
	}
	preset, err := core.PresetByLevel(n)
	if err != nil {
		h.view.ShowError(err)
		return
	}
	if err := h.sched.SetPreset(preset); err != nil {
		h.view.ShowError(err)
		return
	}
	h.view.ShowMessage(fmt.Sprintf("Opponent level set to %d (%s).", preset.Level, preset.Name))
}

func (h *Handler) displayBoard() {
	b, err := board.ParseFEN(h.sched.FEN())
	if err != nil {
		h.view.ShowError(err)
		return
	}
	h.view.DisplayBoard(b, h.lastMove)
}
