// Package repl is the interactive query prompt. It reads one query per
// line, answers it against the frozen index and prints a ranked table.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher"
	"github.com/pollikk/pre-inf1101-p2-v2/internal/searcher/parser"
	apperrors "github.com/pollikk/pre-inf1101-p2-v2/pkg/errors"
)

const (
	CommandExit      = ".exit"
	CommandClear     = ".clear"
	CommandAutoclear = ".autoclear"
	CommandInfo      = ".info"
	CommandStat      = ".stat"
)

const clearTerm = "\033[H\033[J"

// maxLineLen bounds a single input line.
const maxLineLen = 1 << 20

// Searcher answers one query line.
type Searcher interface {
	Search(ctx context.Context, line string, limit int) (*searcher.Response, error)
}

type IndexStats interface {
	Stat() (docs, terms int)
}

type Config struct {
	// MaxTableRows caps the printed result rows. 0 prints every row.
	MaxTableRows int
	// Limit is passed to the searcher. 0 ranks every match.
	Limit int
	// Piped runs every input line as a query and returns at end of input
	// instead of prompting.
	Piped bool
	// ResultLog, when set, receives each query and its result table.
	ResultLog io.Writer
}

type REPL struct {
	in        io.Reader
	out       io.Writer
	searcher  Searcher
	stats     IndexStats
	cfg       Config
	styles    styles
	autoclear bool
	logger    *slog.Logger
}

type styles struct {
	prompt lipgloss.Style
	errTag lipgloss.Style
	header lipgloss.Style
}

func New(in io.Reader, out io.Writer, s Searcher, stats IndexStats, cfg Config) *REPL {
	r := lipgloss.NewRenderer(out)
	return &REPL{
		in:       in,
		out:      out,
		searcher: s,
		stats:    stats,
		cfg:      cfg,
		styles: styles{
			prompt: r.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
			errTag: r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
			header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		},
		logger: slog.Default().With("component", "repl"),
	}
}

// IsPiped reports whether f is not a terminal, i.e. queries arrive from a
// pipe or a file.
func IsPiped(f *os.File) bool {
	fd := f.Fd()
	return !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd)
}

// Run processes input until .exit, end of input or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	if r.cfg.Piped {
		return r.runPiped(ctx)
	}

	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "Exit with the %q command.\n", CommandExit)
	fmt.Fprintf(r.out, "Enter %q for a list of all available commands.\n", CommandInfo)

	scanner := newScanner(r.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.prompt("")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			fmt.Fprintln(r.out)
			return nil
		}
		if r.handle(ctx, scanner.Text()) {
			return nil
		}
	}
}

func (r *REPL) runPiped(ctx context.Context) error {
	var lines []string
	scanner := newScanner(r.in)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading piped input: %w", err)
	}
	if len(lines) == 0 {
		return fmt.Errorf("%w: expected input from pipe", apperrors.ErrInvalidInput)
	}

	fmt.Fprintln(r.out)
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.prompt(line)
		if r.handle(ctx, line) {
			return nil
		}
	}
	r.logger.Info("executed all piped queries", "count", len(lines))
	return nil
}

// handle runs one input line and reports whether the session should end.
func (r *REPL) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, ".") {
		return r.command(line)
	}
	if r.autoclear {
		fmt.Fprint(r.out, clearTerm)
		r.prompt(line)
	}
	r.query(ctx, line)
	return false
}

func (r *REPL) command(cmd string) bool {
	switch cmd {
	case CommandExit:
		return true
	case CommandClear:
		fmt.Fprint(r.out, clearTerm)
	case CommandAutoclear:
		r.autoclear = !r.autoclear
		state := "off"
		if r.autoclear {
			state = "on"
		}
		fmt.Fprintf(r.out, "autoclear toggled %s\n", state)
	case CommandStat:
		docs, terms := r.stats.Stat()
		fmt.Fprintf(r.out, "Index consists of %d documents and %d unique terms\n", docs, terms)
	case CommandInfo:
		r.printCommands()
	default:
		r.printError("Unrecognized command", fmt.Sprintf("%q", cmd))
		fmt.Fprintf(r.out, "Enter %q for a list of all available commands.\n", CommandInfo)
	}
	return false
}

func (r *REPL) query(ctx context.Context, line string) {
	resp, err := r.searcher.Search(ctx, line, r.cfg.Limit)
	var syntaxErr *parser.SyntaxError
	switch {
	case err == nil:
		r.printResults(line, resp)
	case errors.Is(err, searcher.ErrNoUsableCharacters):
		fmt.Fprintln(r.out, "Found no usable characters in the query")
	case errors.As(err, &syntaxErr):
		r.printError("Invalid query", syntaxErr.Error())
	default:
		r.printError("Index error", err.Error())
	}
}

func (r *REPL) prompt(echo string) {
	fmt.Fprint(r.out, r.styles.prompt.Render(">>>")+" ")
	if echo != "" {
		fmt.Fprintln(r.out, echo)
	}
}

func (r *REPL) printError(tag, msg string) {
	fmt.Fprintf(r.out, "%s: %s\n", r.styles.errTag.Render(tag), msg)
}

func (r *REPL) printCommands() {
	const w = 12
	fmt.Fprintln(r.out, r.styles.header.Render("Available commands"))
	fmt.Fprintf(r.out, "%-*s - %s\n", w, CommandExit, "Exit the application")
	fmt.Fprintf(r.out, "%-*s - %s\n", w, CommandClear, "Clear the terminal once")
	fmt.Fprintf(r.out, "%-*s - %s\n", w, CommandAutoclear, "Toggle clearing the terminal on each new query")
	fmt.Fprintf(r.out, "%-*s - %s\n", w, CommandStat, "Print the number indexed documents and unique terms")
	fmt.Fprintf(r.out, "%-*s - %s\n", w, CommandInfo, "Print this message")
	fmt.Fprintln(r.out, "Note: Clearing the terminal only works in ANSI/POSIX terminal emulators")
}

func newScanner(in io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(in)
	s.Buffer(make([]byte, 64*1024), maxLineLen)
	return s
}
