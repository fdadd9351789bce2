// FILE: cmd/chesscoachd/cli/cli.go
// Package cli is the offline database mini-app: inspect and manage
// the match archive without a running daemon.
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"chesscoach/internal/storage"
)

// Run is the entry point for the CLI mini-app
func Run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, matches, moves")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:])
	case "delete":
		return runDelete(args[1:])
	case "matches":
		return runMatches(args[1:])
	case "moves":
		return runMoves(args[1:])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

func openStore(path string) (*storage.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path required")
	}
	store, err := storage.NewStore(path, false, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return store, nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	fmt.Printf("Database initialized at: %s\n", *path)
	return nil
}

func runDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}

	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Printf("Database deleted: %s\n", *path)
	return nil
}

func runMatches(args []string) error {
	fs := flag.NewFlagSet("matches", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	matchID := fs.String("matchId", "", "Match ID to filter (optional, * for all)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	matches, err := store.QueryMatches(*matchID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(matches) == 0 {
		fmt.Println("No matches found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Match ID\tLevel\tResult\tStart Time")
	fmt.Fprintln(w, strings.Repeat("-", 70))

	for _, m := range matches {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			m.MatchID[:8]+"...",
			m.Level,
			m.Result,
			m.StartTimeUTC.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()

	fmt.Printf("\nFound %d match(es)\n", len(matches))
	return nil
}

func runMoves(args []string) error {
	fs := flag.NewFlagSet("moves", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	matchID := fs.String("matchId", "", "Match ID (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *matchID == "" {
		return fmt.Errorf("match ID required")
	}

	store, err := openStore(*path)
	if err != nil {
		return err
	}
	defer store.Close()

	moves, err := store.QueryMoves(*matchID)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(moves) == 0 {
		fmt.Println("No moves found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Ply\tColor\tMove\tSAN\tRating\tDelta\tTime")
	fmt.Fprintln(w, strings.Repeat("-", 70))

	for _, m := range moves {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%+d\t%s\n",
			m.Ply,
			m.PlayerColor,
			m.MoveUCI,
			m.SAN,
			m.Rating,
			m.DeltaCP,
			m.MoveTimeUTC.Format("15:04:05"),
		)
	}
	w.Flush()

	fmt.Printf("\nFound %d move(s)\n", len(moves))
	return nil
}
