package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyjs/corevm/internal/config"
	"github.com/tinyjs/corevm/internal/diag"
)

// Global flags, spec.md §6's CLI surface.
var (
	showOpcodes bool
	parseOnly   bool
	memStats    bool
	abortOnFail bool
	logLevel    string
	logFile     string
	mmapFile    string
)

var rootCmd = &cobra.Command{
	Use:     "corevm",
	Short:   "Run and inspect compiled corevm bytecode",
	Long: `corevm is a command-line front end for the corevm execution core:
it loads a pre-compiled bytecode file, runs it against a fresh VM context,
and can report heap/GC statistics after the run.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&showOpcodes, "show-opcodes", false, "Accepted, but only prints a notice: per-opcode tracing is not instrumented")
	rootCmd.PersistentFlags().BoolVar(&parseOnly, "parse-only", false, "Load and validate bytecode without running it")
	rootCmd.PersistentFlags().BoolVar(&memStats, "mem-stats", false, "Print heap/GC statistics after execution")
	rootCmd.PersistentFlags().BoolVar(&abortOnFail, "abort-on-fail", false, "Exit immediately on the first uncaught exception")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "off", "Diagnostics level: off, info, debug")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write diagnostics to this file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&mmapFile, "mmap-heap-file", "", "Back the byte arena with a file-mapped region at this path instead of process memory (unix only)")
}

// vmConfigOptions translates this run's persistent flags into
// internal/config.Option values shared by every subcommand that builds a
// Runtime (run, eval, opcodes --file, snapshot dump, snapshot exec).
func vmConfigOptions() []config.Option {
	var opts []config.Option
	if mmapFile != "" {
		opts = append(opts, config.WithMmapBackingFile(mmapFile))
	}
	return opts
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// initDiagnostics wires --log-level/--log-file into internal/diag before
// any subcommand runs, the same "Init before any log calls" discipline
// cmd/hiveexplorer's logger.Init documents.
func initDiagnostics() error {
	level, enabled := parseLogLevel(logLevel)
	if !enabled {
		diag.Init(diag.Options{Enabled: false})
		return nil
	}
	out := os.Stderr
	var f *os.File
	if logFile != "" {
		var err error
		f, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
	}
	if f != nil {
		diag.Init(diag.Options{Enabled: true, Level: level, Output: f})
	} else {
		diag.Init(diag.Options{Enabled: true, Level: level, Output: out})
	}
	return nil
}

func parseLogLevel(s string) (slog.Level, bool) {
	switch s {
	case "info":
		return slog.LevelInfo, true
	case "debug":
		return slog.LevelDebug, true
	case "off", "":
		return slog.LevelInfo, false
	default:
		return slog.LevelInfo, true
	}
}

// Exit codes: 0 success; 1 an uncaught exception or a load/validate
// failure (bad bytecode, snapshot mismatch); 3 usage error.
const (
	exitOK                = 0
	exitUncaughtException = 1
	exitLoadFailure       = 1
	exitUsage             = 3
)

func exitCodeFor(err error) int {
	switch err.(type) {
	case *usageError:
		return exitUsage
	case *loadError:
		return exitLoadFailure
	default:
		return exitUncaughtException
	}
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

type loadError struct{ msg string }

func (e *loadError) Error() string { return e.msg }
