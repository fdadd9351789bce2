// FILE: internal/cli/cli.go
// Package cli is the terminal view: command parsing, themed board
// rendering with last-move highlight, and rated-move display.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"chesscoach/internal/board"
	"chesscoach/internal/core"
)

type CommandType int

const (
	CmdNone CommandType = iota
	CmdNew
	CmdMove
	CmdLevel
	CmdHistory
	CmdBoard
	CmdColor
	CmdHelp
	CmdQuit
)

type Command struct {
	Type CommandType
	Args []string
}

type ColorTheme string

const (
	ThemeOff   ColorTheme = "off"
	ThemeBrown ColorTheme = "brown"
	ThemeGreen ColorTheme = "green"
	ThemeGray  ColorTheme = "gray"
)

type themeColors struct {
	lightBg     string
	darkBg      string
	highlightBg string
	white       string
	black       string
	reset       string
}

var themes = map[ColorTheme]themeColors{
	ThemeOff: {},
	ThemeBrown: {
		lightBg:     "\033[48;5;230m", // Beige
		darkBg:      "\033[48;5;94m",  // Brown
		highlightBg: "\033[48;5;178m", // Gold
		white:       "\033[97m",
		black:       "\033[30m",
		reset:       "\033[0m",
	},
	ThemeGreen: {
		lightBg:     "\033[48;5;157m", // Light green
		darkBg:      "\033[48;5;22m",  // Dark green
		highlightBg: "\033[48;5;178m",
		white:       "\033[97m",
		black:       "\033[30m",
		reset:       "\033[0m",
	},
	ThemeGray: {
		lightBg:     "\033[48;5;251m", // Light gray
		darkBg:      "\033[48;5;240m", // Dark gray
		highlightBg: "\033[48;5;178m",
		white:       "\033[97m",
		black:       "\033[30m",
		reset:       "\033[0m",
	},
}

// ratingMarks annotate moves the way annotators do on paper.
var ratingMarks = map[core.Rating]string{
	core.RatingBrilliant:  "!!",
	core.RatingGreat:      "!",
	core.RatingGood:       "",
	core.RatingInaccuracy: "?!",
	core.RatingMistake:    "?",
	core.RatingBlunder:    "??",
}

type CLI struct {
	input  *bufio.Scanner
	output io.Writer
	theme  ColorTheme
}

func New(input io.Reader, output io.Writer) *CLI {
	return &CLI{
		input:  bufio.NewScanner(input),
		output: output,
		theme:  ThemeOff,
	}
}

// GetCommand reads one command synchronously.
func (c *CLI) GetCommand() (*Command, error) {
	if !c.input.Scan() {
		if err := c.input.Err(); err != nil {
			return nil, err
		}
		return &Command{Type: CmdQuit}, nil
	}

	input := strings.TrimSpace(c.input.Text())
	if input == "" {
		return &Command{Type: CmdNone}, nil
	}
	return ParseCommand(input), nil
}

// ParseCommand maps a trimmed input line to a command. Anything that
// is not a keyword is treated as a move.
func ParseCommand(input string) *Command {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return &Command{Type: CmdNone}
	}

	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "new":
		return &Command{Type: CmdNew, Args: args}
	case "level":
		return &Command{Type: CmdLevel, Args: args}
	case "history":
		return &Command{Type: CmdHistory}
	case "board":
		return &Command{Type: CmdBoard}
	case "color":
		return &Command{Type: CmdColor, Args: args}
	case "help", "?":
		return &Command{Type: CmdHelp}
	case "quit", "exit":
		return &Command{Type: CmdQuit}
	default:
		return &Command{Type: CmdMove, Args: []string{cmd}}
	}
}

func (c *CLI) SetTheme(theme ColorTheme) error {
	if _, ok := themes[theme]; !ok {
		return fmt.Errorf("invalid theme: %s (use: off, brown, green, gray)", theme)
	}
	c.theme = theme
	return nil
}

func (c *CLI) ShowMessage(msg string) {
	fmt.Fprintln(c.output, msg)
}

func (c *CLI) ShowError(err error) {
	c.ShowMessage(fmt.Sprintf("Error: %v", err))
}

func (c *CLI) ShowPrompt(prompt string) {
	fmt.Fprint(c.output, prompt)
}

// DisplayBoard renders the position. lastMove, if a 4-5 char UCI
// string, highlights its source and target squares in color themes.
func (c *CLI) DisplayBoard(b *board.Board, lastMove string) {
	theme := themes[c.theme]
	highlight := map[string]bool{}
	if len(lastMove) >= 4 {
		highlight[lastMove[:2]] = true
		highlight[lastMove[2:4]] = true
	}

	var sb strings.Builder
	sb.WriteString("\n  a b c d e f g h\n")

	for r := 8; r >= 1; r-- {
		fmt.Fprintf(&sb, "%d ", r)
		for f := 0; f < 8; f++ {
			square := fmt.Sprintf("%c%d", 'a'+f, r)
			piece := b.PieceAt(square)

			if c.theme == ThemeOff {
				if piece == 0 {
					sb.WriteString(". ")
				} else {
					fmt.Fprintf(&sb, "%c ", piece)
				}
				continue
			}

			bg := theme.darkBg
			if (r+f)%2 == 0 {
				bg = theme.lightBg
			}
			if highlight[square] {
				bg = theme.highlightBg
			}

			if piece == 0 {
				fmt.Fprintf(&sb, "%s  %s", bg, theme.reset)
			} else {
				color := theme.black
				if piece >= 'A' && piece <= 'Z' {
					color = theme.white
				}
				fmt.Fprintf(&sb, "%s%s%c %s", bg, color, piece, theme.reset)
			}
		}
		fmt.Fprintf(&sb, " %d\n", r)
	}
	sb.WriteString("  a b c d e f g h\n")

	c.ShowMessage(sb.String())
}

// FormatRatedMove renders one ledger entry: "12. Nf3! (great, +105)".
func FormatRatedMove(rec core.MoveRecord) string {
	moveNum := (rec.Ply + 1) / 2
	prefix := fmt.Sprintf("%d.", moveNum)
	if rec.Color == core.ColorBlack {
		prefix = fmt.Sprintf("%d...", moveNum)
	}
	return fmt.Sprintf("%s %s%s (%s, %+d)", prefix, rec.SAN, ratingMarks[rec.Rating], rec.Rating, rec.DeltaCP)
}

// ShowRatedMove prints a just-resolved ledger entry with its author.
func (c *CLI) ShowRatedMove(who string, rec core.MoveRecord) {
	c.ShowMessage(fmt.Sprintf("%s: %s", who, FormatRatedMove(rec)))
}

// ShowHistory prints the rated ledger in play order.
func (c *CLI) ShowHistory(records []core.MoveRecord, currentFEN string) {
	if len(records) == 0 {
		c.ShowMessage("No moves yet.")
		return
	}
	for _, rec := range records {
		c.ShowMessage("  " + FormatRatedMove(rec))
	}
	c.ShowMessage(fmt.Sprintf("Current FEN: %s", currentFEN))
}

// ShowSummary prints the per-rating tally of a finished match.
func (c *CLI) ShowSummary(sum core.MatchSummary) {
	c.ShowMessage(fmt.Sprintf(
		"Move quality: %d brilliant, %d great, %d good, %d inaccuracies, %d mistakes, %d blunders",
		sum.Brilliant, sum.Great, sum.Good, sum.Inaccuracy, sum.Mistake, sum.Blunder))
}

func (c *CLI) ShowGameOver(result core.Result, sum core.MatchSummary) {
	c.ShowMessage(fmt.Sprintf("\nGame Over: %s", result))
	c.ShowSummary(sum)
	c.ShowMessage("Start a new match with 'new'.")
}

func (c *CLI) ShowHelp() {
	help := `Commands:
  new              - Start a new match
  <move>           - Play a move in UCI form (e.g., e2e4, a7a8q)
  level <1-7>      - Set opponent difficulty
  history          - Show the rated move ledger
  board            - Redraw the board
  color <theme>    - Set board color theme (off|brown|green|gray)
  quit/exit        - Exit the program
  help/?           - Show this help message`

	c.ShowMessage(help)
}

func (c *CLI) ShowWelcome(level int, name string, engineReady bool) {
	c.ShowMessage("chesscoach - play rated chess against the engine")
	c.ShowMessage(fmt.Sprintf("Opponent level: %d (%s)", level, name))
	if !engineReady {
		c.ShowMessage("Engine unavailable: running human-only, moves are not rated.")
	}
	c.ShowMessage("Commands: new, <move>, level <1-7>, history, board, color, help/?, quit")
	c.ShowMessage("")
}
