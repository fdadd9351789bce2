// FILE: cmd/chesscoach-client/main.go
// Package main implements an interactive debugging client for the
// match API daemon.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"chesscoach/internal/client/api"
	"chesscoach/internal/client/commands"
	"chesscoach/internal/client/display"

	"github.com/chzyer/readline"
)

func main() {
	apiURL := flag.String("url", "http://localhost:8080", "Match API base URL")
	flag.Parse()

	s := &commands.Session{
		APIBaseURL: *apiURL,
		Client:     api.New(*apiURL),
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("chesscoach"),
		HistoryFile:     ".chesscoach_client_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sChesscoach Debug Client%s\n", display.Cyan, display.Reset)
	fmt.Printf("%sAPI: %s%s\n", display.Cyan, s.APIBaseURL, display.Reset)
	fmt.Printf("Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if line == "exit" || line == "quit" || line == "x" {
			break
		}

		// Check for verbose flag
		if strings.HasSuffix(line, " -v") {
			s.Verbose = true
			line = strings.TrimSuffix(line, " -v")
		} else {
			s.Verbose = false
		}

		registry.Execute(line)
	}
}

func buildPrompt(s *commands.Session) string {
	promptStr := "chesscoach"

	if s.CurrentMatch != "" {
		promptStr += fmt.Sprintf("%s [%s%s%s]",
			display.Yellow, display.White, s.CurrentMatch[:8], display.Yellow)

		if s.Phase != "" && s.Phase != "awaiting_input" {
			promptStr += fmt.Sprintf(" - %s", s.Phase)
		} else if s.Turn != "" {
			promptStr += fmt.Sprintf(" - Turn:%s", display.ColorForTurn(s.Turn))
		}
	}

	return display.Prompt(promptStr)
}
