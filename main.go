// Command svm runs a Synacor Challenge program image to completion,
// performing character I/O against the controlling terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	getopt "github.com/pborman/getopt/v2"

	"github.com/jethridge13/svm/logging"
	"github.com/jethridge13/svm/synacor"
)

// Exit codes, per the command-line surface in the specification: 0 on
// clean halt or end-of-memory, 1 on a VM fault, 2 on a usage error before
// the VM ever starts running.
const (
	exitOK = iota
	exitFault
	exitUsage
)

var (
	logPath    = getopt.StringLong("log", 'l', "", "Write diagnostics to this file instead of stderr")
	trace      = getopt.BoolLong("trace", 't', "Log one diagnostic record per executed instruction")
	recordPath = getopt.StringLong("record", 'r', "", "Also copy out's output to this transcript file")
	help       = getopt.BoolLong("help", 'h', "Show usage")
)

func main() {
	getopt.Parse()

	if *help {
		getopt.Usage()
		os.Exit(exitOK)
	}

	args := getopt.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "expected exactly one argument: the program image path")
		getopt.Usage()
		os.Exit(exitUsage)
	}

	os.Exit(run(args[0]))
}

func run(imagePath string) int {
	var logOut *os.File
	if *logPath != "" {
		f, err := logging.OpenLogFile(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
			return exitUsage
		}
		defer f.Close()
		logOut = f
	}
	level := slog.LevelInfo
	if *trace {
		level = slog.LevelDebug
	}
	logger := logging.New(logOut, level)

	term := synacor.StdTerminal()
	if *recordPath != "" {
		f, err := os.Create(*recordPath)
		if err != nil {
			logger.Error("opening transcript file", "path", *recordPath, "err", err)
			return exitUsage
		}
		defer f.Close()
		term = synacor.NewTranscriptTerminal(term, f)
	}

	image, err := os.Open(imagePath)
	if err != nil {
		logger.Error("opening image", "path", imagePath, "err", err)
		return exitUsage
	}
	defer image.Close()

	m := synacor.New(term)
	if err := m.Load(image); err != nil {
		logger.Error("loading image", "path", imagePath, "err", err)
		return exitUsage
	}

	if *trace {
		m.SetTracer(&traceLogger{log: logger})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	status, err := m.Run(ctx)
	if err != nil {
		logger.Error("fault", "err", err, "pc", m.PC(), "steps", m.Steps())
		return exitFault
	}

	logger.Info("run finished", "status", status.String(), "pc", m.PC(), "steps", m.Steps(), "elapsed", logging.Since(start))
	return exitOK
}

// traceLogger adapts synacor.Tracer onto the structured logger for the
// -trace flag. It never touches VM state.
type traceLogger struct {
	log *slog.Logger
}

func (t *traceLogger) TraceStep(pc uint16, op synacor.Opcode, operands []uint16) {
	t.log.Debug("step", "pc", pc, "op", op.String(), "args", operands)
}
