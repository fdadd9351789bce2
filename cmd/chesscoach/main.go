// FILE: cmd/chesscoach/main.go
// Package main implements the local terminal client: play against the
// engine with per-move quality ratings.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"chesscoach/internal/cli"
	"chesscoach/internal/core"
	"chesscoach/internal/engine"
	"chesscoach/internal/match"
	clitransport "chesscoach/internal/transport/cli"

	"github.com/chzyer/readline"
	"go.uber.org/zap"
	"golang.org/x/term"
)

func main() {
	var (
		enginePath = flag.String("engine", "stockfish", "Path to a UCI engine binary")
		level      = flag.Int("level", core.DefaultPreset().Level, "Opponent difficulty level (1-7)")
		theme      = flag.String("theme", "auto", "Board color theme (auto|off|brown|green|gray)")
		debug      = flag.Bool("debug", false, "Log engine traffic to stderr")
	)
	flag.Parse()

	log := zap.NewNop()
	if *debug {
		var err error
		log, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
			os.Exit(1)
		}
	}
	defer log.Sync()

	preset, err := core.PresetByLevel(*level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var gw engine.Gateway
	if uci, err := engine.New(*enginePath, log); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: engine %q unavailable: %v\n", *enginePath, err)
	} else {
		gw = uci
		defer gw.Close()
	}

	eval := match.NewEvaluator(gw, match.DefaultEvalDepth, log)
	sched := match.NewScheduler(gw, eval, preset, log)

	view := cli.New(os.Stdin, os.Stdout)
	if err := view.SetTheme(resolveTheme(*theme)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	h := clitransport.New(sched, view, gw != nil)
	h.Greet()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          h.Prompt(),
		HistoryFile:     historyPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		// No terminal; fall back to plain scanner input
		h.Run()
		return
	}
	defer rl.Close()

	for {
		rl.SetPrompt(h.Prompt())

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

		if !h.ProcessCommand(cli.ParseCommand(line)) {
			break
		}
	}
}

// resolveTheme picks a color theme, defaulting by terminal detection.
func resolveTheme(name string) cli.ColorTheme {
	if name != "auto" {
		return cli.ColorTheme(name)
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return cli.ThemeBrown
	}
	return cli.ThemeOff
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chesscoach_history"
	}
	return home + "/.chesscoach_history"
}
