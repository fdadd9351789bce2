// FILE: internal/client/commands/match.go
package commands

import (
	"fmt"
	"strconv"
	"strings"

	"chesscoach/internal/client/display"
	"chesscoach/internal/core"
)

func (r *Registry) registerMatchCommands() {
	r.Register(&Command{
		Name:        "new",
		ShortName:   "n",
		Description: "Create a new match",
		Usage:       "new [level] [fen]",
		Handler:     newMatchHandler,
	})

	r.Register(&Command{
		Name:        "join",
		ShortName:   "j",
		Description: "Join/set current match ID",
		Usage:       "join <matchId>",
		Handler:     joinMatchHandler,
	})

	r.Register(&Command{
		Name:        "move",
		ShortName:   "m",
		Description: "Play a move and follow the turn cycle",
		Usage:       "move <uci-move>",
		Handler:     moveHandler,
	})

	r.Register(&Command{
		Name:        "show",
		ShortName:   "h",
		Description: "Show board and rated history",
		Usage:       "show",
		Handler:     showHandler,
	})

	r.Register(&Command{
		Name:        "state",
		ShortName:   "s",
		Description: "Show raw match JSON",
		Usage:       "state",
		Handler:     stateHandler,
	})

	r.Register(&Command{
		Name:        "level",
		ShortName:   "l",
		Description: "Set opponent difficulty",
		Usage:       "level <1-7>",
		Handler:     levelHandler,
	})

	r.Register(&Command{
		Name:        "restart",
		ShortName:   "r",
		Description: "Restart the current match",
		Usage:       "restart",
		Handler:     restartHandler,
	})

	r.Register(&Command{
		Name:        "delete",
		ShortName:   "d",
		Description: "Delete a match",
		Usage:       "delete [matchId]",
		Handler:     deleteHandler,
	})

	r.Register(&Command{
		Name:        "poll",
		ShortName:   "p",
		Description: "Long-poll for match updates",
		Usage:       "poll",
		Handler:     pollHandler,
	})
}

// adopt records the latest snapshot into the session.
func (s *Session) adopt(resp *core.MatchResponse) {
	s.CurrentMatch = resp.MatchID
	s.LastMoveCount = len(resp.Moves)
	s.Turn = resp.Turn
	s.Phase = resp.Phase
}

// cycleSettled reports whether the server expects input again.
func cycleSettled(phase string) bool {
	return phase == "awaiting_input" || phase == "terminal" || phase == "faulted"
}

func printNewMoves(resp *core.MatchResponse, since int) {
	for i := since; i < len(resp.Moves); i++ {
		fmt.Println("  " + display.FormatRatedMove(resp.Moves[i]))
	}
}

func printOutcome(resp *core.MatchResponse) {
	switch resp.Phase {
	case "terminal":
		fmt.Printf("%sGame over: %s%s\n", display.Magenta, resp.Result, display.Reset)
		if resp.Summary != nil {
			fmt.Printf("Move quality: %s\n", display.FormatSummary(*resp.Summary))
		}
	case "faulted":
		fmt.Printf("%sMatch faulted: the engine failed. Restart or delete the match.%s\n",
			display.Red, display.Reset)
	}
}

func newMatchHandler(s *Session, args []string) error {
	level := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid level: %s", args[0])
		}
		level = n
	}
	fen := ""
	if len(args) > 1 {
		fen = strings.Join(args[1:], " ")
	}

	resp, err := s.Client.CreateMatch(level, fen)
	if err != nil {
		return err
	}
	s.adopt(resp)

	fmt.Printf("%sMatch created: %s%s\n", display.Green, resp.MatchID, display.Reset)
	fmt.Printf("Level: %d | Turn: %s\n", resp.Level, display.ColorForTurn(resp.Turn))
	return nil
}

func joinMatchHandler(s *Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: join <matchId>")
	}

	resp, err := s.Client.GetMatch(args[0])
	if err != nil {
		return err
	}
	s.adopt(resp)

	fmt.Printf("%sJoined match: %s%s\n", display.Green, resp.MatchID, display.Reset)
	fmt.Printf("Turn: %s | Phase: %s | Moves: %d\n", resp.Turn, resp.Phase, len(resp.Moves))
	return nil
}

func moveHandler(s *Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: move <uci-move>")
	}
	if s.CurrentMatch == "" {
		return fmt.Errorf("no current match, use 'new' or 'join <matchId>'")
	}

	known := s.LastMoveCount
	resp, err := s.Client.MakeMove(s.CurrentMatch, args[0])
	if err != nil {
		return err
	}
	s.adopt(resp)
	printNewMoves(resp, known)
	known = len(resp.Moves)

	// Scoring and the opponent reply land asynchronously; long-poll
	// until the cycle settles.
	for i := 0; i < 4 && !cycleSettled(resp.Phase); i++ {
		fmt.Printf("%sWaiting for %s...%s\n", display.Magenta, resp.Phase, display.Reset)
		resp, err = s.Client.GetMatchWithPoll(s.CurrentMatch, known)
		if err != nil {
			return err
		}
		s.adopt(resp)
		printNewMoves(resp, known)
		known = len(resp.Moves)
	}

	printOutcome(resp)
	return nil
}

func showHandler(s *Session, args []string) error {
	if s.CurrentMatch == "" {
		return fmt.Errorf("no current match, use 'new' or 'join <matchId>'")
	}

	resp, err := s.Client.GetMatch(s.CurrentMatch)
	if err != nil {
		return err
	}
	s.adopt(resp)

	fmt.Println()
	if err := display.RenderFEN(resp.FEN); err != nil {
		return err
	}

	fmt.Printf("\nFEN: %s\n", resp.FEN)
	fmt.Printf("Turn: %s | Phase: %s | Level: %d\n",
		display.ColorForTurn(resp.Turn), resp.Phase, resp.Level)

	if len(resp.Moves) > 0 {
		fmt.Println("\nHistory:")
		printNewMoves(resp, 0)
	}
	printOutcome(resp)
	return nil
}

func stateHandler(s *Session, args []string) error {
	if s.CurrentMatch == "" {
		return fmt.Errorf("no current match, use 'new' or 'join <matchId>'")
	}

	resp, err := s.Client.GetMatch(s.CurrentMatch)
	if err != nil {
		return err
	}
	s.adopt(resp)

	fmt.Printf("%sMatch State:%s\n", display.Cyan, display.Reset)
	display.PrettyPrintJSON(resp)
	return nil
}

func levelHandler(s *Session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: level <1-7>")
	}
	if s.CurrentMatch == "" {
		return fmt.Errorf("no current match, use 'new' or 'join <matchId>'")
	}

	level, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid level: %s", args[0])
	}

	resp, err := s.Client.SetLevel(s.CurrentMatch, level)
	if err != nil {
		return err
	}
	s.adopt(resp)

	fmt.Printf("%sLevel set to %d%s\n", display.Green, resp.Level, display.Reset)
	return nil
}

func restartHandler(s *Session, args []string) error {
	if s.CurrentMatch == "" {
		return fmt.Errorf("no current match, use 'new' or 'join <matchId>'")
	}

	resp, err := s.Client.RestartMatch(s.CurrentMatch)
	if err != nil {
		return err
	}
	s.adopt(resp)

	fmt.Printf("%sMatch restarted%s\n", display.Green, display.Reset)
	return nil
}

func deleteHandler(s *Session, args []string) error {
	matchID := s.CurrentMatch
	if len(args) > 0 {
		matchID = args[0]
	}
	if matchID == "" {
		return fmt.Errorf("specify match ID or set current match")
	}

	if err := s.Client.DeleteMatch(matchID); err != nil {
		return err
	}

	if matchID == s.CurrentMatch {
		s.CurrentMatch = ""
		s.LastMoveCount = 0
		s.Turn = ""
		s.Phase = ""
	}

	fmt.Printf("%sMatch deleted: %s%s\n", display.Green, matchID, display.Reset)
	return nil
}

func pollHandler(s *Session, args []string) error {
	if s.CurrentMatch == "" {
		return fmt.Errorf("no current match, use 'new' or 'join <matchId>'")
	}

	moveCount := s.LastMoveCount
	fmt.Printf("%sLong-polling for updates (move count: %d)...%s\n",
		display.Cyan, moveCount, display.Reset)
	fmt.Printf("%sThis may take up to 25 seconds%s\n", display.Cyan, display.Reset)

	resp, err := s.Client.GetMatchWithPoll(s.CurrentMatch, moveCount)
	if err != nil {
		return err
	}
	s.adopt(resp)

	if len(resp.Moves) > moveCount {
		fmt.Printf("%sMatch updated! New moves:%s\n", display.Green, display.Reset)
		printNewMoves(resp, moveCount)
	} else {
		fmt.Printf("%sNo updates (timeout)%s\n", display.Yellow, display.Reset)
	}
	printOutcome(resp)
	return nil
}
