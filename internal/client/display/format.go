// FILE: internal/client/display/format.go
package display

import (
	"encoding/json"
	"fmt"

	"chesscoach/internal/core"
)

// PrettyPrintJSON prints formatted JSON
func PrettyPrintJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%sError formatting JSON: %s%s\n", Red, err.Error(), Reset)
		return
	}
	fmt.Println(string(data))
}

// FormatRatedMove renders one ledger entry with its rating colored,
// e.g. "3... Nf6 (good, +12)".
func FormatRatedMove(mv core.RatedMove) string {
	moveNum := (mv.Ply + 1) / 2
	prefix := fmt.Sprintf("%d.", moveNum)
	if mv.Color == "b" {
		prefix = fmt.Sprintf("%d...", moveNum)
	}
	color := RatingColor(mv.Rating)
	return fmt.Sprintf("%s %s %s(%s, %+d)%s", prefix, mv.SAN, color, mv.Rating, mv.DeltaCP, Reset)
}

// FormatSummary renders the per-rating tally of a match.
func FormatSummary(sum core.MatchSummary) string {
	return fmt.Sprintf("%d brilliant, %d great, %d good, %d inaccuracies, %d mistakes, %d blunders",
		sum.Brilliant, sum.Great, sum.Good, sum.Inaccuracy, sum.Mistake, sum.Blunder)
}
