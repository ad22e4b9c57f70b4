package repl

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher"
)

// FormatSummary renders the result count line. Durations under a
// millisecond get six decimals, longer ones four.
func FormatSummary(n int, d time.Duration) string {
	secs := d.Seconds()
	decimals := 6
	if secs > 1e-3 {
		decimals = 4
	}
	plural := "s"
	if n == 1 {
		plural = ""
	}
	return fmt.Sprintf("=== Found %d result%s in %.*fs ===\n", n, plural, decimals, secs)
}

// FormatTable renders the Score/Document table. At most maxRows rows are
// printed (0 for all); total is the number of matches, which may exceed the
// rows given.
func FormatTable(resp *searcher.Response, maxRows int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %s\n", "Score", "Document")
	results := resp.Result.Results
	printed := 0
	for _, doc := range results {
		if maxRows > 0 && printed >= maxRows {
			break
		}
		fmt.Fprintf(&b, "%-10.3f %s\n", doc.Score, doc.DocID)
		printed++
	}
	if rest := resp.Result.TotalHits - printed; rest > 0 {
		fmt.Fprintf(&b, " ... and %d more\n", rest)
	}
	return b.String()
}

func (r *REPL) printResults(line string, resp *searcher.Response) {
	summary := FormatSummary(resp.Result.TotalHits, resp.Latency)
	table := FormatTable(resp, r.cfg.MaxTableRows)
	fmt.Fprint(r.out, summary, table)
	if r.cfg.ResultLog != nil {
		if _, err := io.WriteString(r.cfg.ResultLog, "\n>>> "+line+"\n"+summary+table); err != nil {
			r.logger.Error("result log write failed, disabling it", "error", err)
			r.cfg.ResultLog = nil
		}
	}
}
