package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyjs/corevm/bindings"
	"github.com/tinyjs/corevm/bytecode"
	"github.com/tinyjs/corevm/heap"
	"github.com/tinyjs/corevm/value"
)

func init() {
	snap := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect or run a corevm bytecode snapshot",
	}
	snap.AddCommand(newSnapshotDumpCmd())
	snap.AddCommand(newSnapshotExecCmd())
	rootCmd.AddCommand(snap)
}

func newSnapshotDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <snapshot-file>",
		Short: "Print a snapshot's header and per-code sizes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dumpSnapshot(args[0])
		},
	}
}

func newSnapshotExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <snapshot-file>",
		Short: "Load a snapshot and run its first code entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return execSnapshot(args[0])
		},
	}
}

func dumpSnapshot(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return &usageError{msg: fmt.Sprintf("read %s: %v", path, err)}
	}
	rt := bindings.Init(vmConfigOptions()...)
	snap, err := bytecode.LoadSnapshot(b, rt.Context().Pool)
	if err != nil {
		return &loadError{msg: err.Error()}
	}
	fmt.Printf("snapshot version %d, %d code entries\n", snap.Version, len(snap.Codes))
	for i, code := range snap.Codes {
		fmt.Printf("  [%d] %s: %d bytes, args=%d, stack_depth=%d\n",
			i, code.Name, len(code.Code), code.ArgumentCount, code.StackDepth)
	}
	return nil
}

func execSnapshot(path string) error {
	if err := initDiagnostics(); err != nil {
		return err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return &usageError{msg: fmt.Sprintf("read %s: %v", path, err)}
	}
	rt := bindings.Init(vmConfigOptions()...)
	snap, err := bytecode.LoadSnapshot(b, rt.Context().Pool)
	if err != nil {
		return &loadError{msg: err.Error()}
	}
	if len(snap.Codes) == 0 {
		return &loadError{msg: "snapshot has no code entries"}
	}
	fnCP, err := rt.Context().CreateFunction(snap.Codes[0], rt.Context().GlobalEnv, heap.NullCP, false)
	if err != nil {
		return err
	}
	result, err := rt.Call(value.Object(fnCP), rt.Undefined(), nil)
	if err != nil {
		if rt.HasException() {
			fmt.Fprintf(os.Stderr, "uncaught exception: %s\n", rt.ToGoString(rt.Exception()))
			rt.ClearException()
			os.Exit(exitUncaughtException)
		}
		return err
	}
	if rt.IsString(result) || rt.IsNumber(result) || rt.IsBool(result) {
		fmt.Println(rt.ToGoString(result))
	}
	return nil
}
