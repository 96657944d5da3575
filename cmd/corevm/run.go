package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyjs/corevm/bindings"
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <bytecode-file>",
		Short: "Load and run a compiled bytecode file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFile(args[0])
		},
	}
}

func runFile(path string) error {
	if err := initDiagnostics(); err != nil {
		return err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return &usageError{msg: fmt.Sprintf("read %s: %v", path, err)}
	}

	rt := bindings.Init(vmConfigOptions()...)

	if showOpcodes {
		// Full per-opcode tracing would need vm's dispatch loop
		// instrumented with a step callback; this build only
		// announces the run boundary rather than faking per-opcode
		// output it cannot actually produce yet.
		fmt.Fprintln(os.Stderr, "corevm: --show-opcodes requested but this build does not instrument per-opcode trace points")
	}

	fn, err := rt.LoadBytecode(b)
	if err != nil {
		return &loadError{msg: err.Error()}
	}
	if parseOnly {
		fmt.Println("ok: bytecode loaded successfully")
		return nil
	}

	result, err := rt.Call(fn, rt.Undefined(), nil)
	if err != nil {
		if abortOnFail {
			return err
		}
		if rt.HasException() {
			fmt.Fprintf(os.Stderr, "uncaught exception: %s\n", rt.ToGoString(rt.Exception()))
			rt.ClearException()
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		printMemStats(rt)
		os.Exit(exitUncaughtException)
	}

	if rt.IsString(result) || rt.IsNumber(result) || rt.IsBool(result) {
		fmt.Println(rt.ToGoString(result))
	}
	printMemStats(rt)
	return nil
}

func printMemStats(rt *bindings.Runtime) {
	if !memStats {
		return
	}
	ctx := rt.Context()
	live := 0
	for cp := ctx.Store.Head(); !cp.IsNull(); cp = ctx.Store.Next(cp) {
		live++
	}
	fmt.Fprintf(os.Stderr, "objects: live=%d collections=%d last_freed=%d\n",
		live, ctx.GC.Collections, ctx.GC.LastFreed)
}
