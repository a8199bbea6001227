// tac writes each input to standard output with its separator-terminated
// segments in reverse order, last segment first. With no file, or when a
// file is "-", it reads standard input.
//
// Files are memory mapped and scanned in place; piped input is buffered
// in memory and spills to a temp file past 4 MiB. The scan runs on the
// widest kernel the CPU supports.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bytescan/tac"
)

const version = "1.0.0"

const usage = `Usage: tac [OPTION]... [FILE]...
Write each FILE to standard output, last segment first.
With no FILE, or when FILE is -, read standard input.

Options:
  -h, --help             display this help and exit
  -v, --version          output version information and exit
      --line-buffered    write output directly instead of buffering it
  -s, --separator=SEP    use SEP as the segment separator instead of newline;
                         SEP must be exactly one byte
`

func main() {
	// With SIGPIPE ignored, a closed downstream surfaces as EPIPE on the
	// write path instead of killing the process mid-run.
	signal.Ignore(syscall.SIGPIPE)
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin *os.File, stdout, stderr io.Writer) int {
	var (
		showHelp     bool
		showVersion  bool
		lineBuffered bool
		separator    string
	)

	flags := pflag.NewFlagSet("tac", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.BoolVarP(&showHelp, "help", "h", false, "display this help and exit")
	flags.BoolVarP(&showVersion, "version", "v", false, "output version information and exit")
	flags.BoolVar(&lineBuffered, "line-buffered", false, "write output directly instead of buffering it")
	flags.StringVarP(&separator, "separator", "s", "\n", "segment separator byte")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprint(stdout, usage)
			return 0
		}
		fmt.Fprintf(stderr, "tac: %v\n", err)
		fmt.Fprintln(stderr, "Try 'tac --help' for more information.")
		return 2
	}
	if showHelp {
		fmt.Fprint(stdout, usage)
		return 0
	}
	if showVersion {
		fmt.Fprintf(stdout, "tac %s\n", version)
		return 0
	}
	if len(separator) != 1 {
		fmt.Fprintf(stderr, "tac: separator must be exactly one byte, got %q\n", separator)
		return 2
	}

	files := flags.Args()
	if len(files) == 0 {
		files = []string{"-"}
	}

	// The sink is fixed before any scanning: direct writes when asked for
	// or when talking to a terminal, a buffered writer otherwise. Reverse
	// flushes it after each input.
	var sink io.Writer = stdout
	if !lineBuffered && !isTerminal(stdout) {
		sink = bufio.NewWriterSize(stdout, 64*1024)
	}

	opts := []tac.Option{
		tac.WithSeparator(separator[0]),
		tac.WithStdin(stdin),
		tac.WithLogger(newLogger(stderr)),
	}

	for _, name := range files {
		if err := tac.Reverse(sink, name, opts...); err != nil {
			if errors.Is(err, syscall.EPIPE) {
				// The downstream consumer is gone; ending quietly is the
				// filter convention.
				return 0
			}
			fmt.Fprintf(stderr, "tac: %s: %v\n", displayName(name), humanErr(err))
			return 1
		}
	}
	return 0
}

// newLogger builds the diagnostics logger: human-readable on a terminal,
// JSON when stderr is redirected. Warnings only; the reversal itself
// reports its failure through the exit path.
func newLogger(stderr io.Writer) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelWarn}
	if f, ok := stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(stderr, options))
	}
	return slog.New(slog.NewJSONHandler(stderr, options))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func displayName(name string) string {
	if name == "-" {
		return "standard input"
	}
	return name
}

// humanErr strips the path out of os errors; the message already names
// the input once.
func humanErr(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}
