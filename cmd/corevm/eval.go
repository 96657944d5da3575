package main

import (
	"github.com/spf13/cobra"

	"github.com/tinyjs/corevm/bindings"
)

func init() {
	rootCmd.AddCommand(newEvalCmd())
}

// newEvalCmd mirrors spec.md §6's eval capability, which bindings.Eval
// reports as unsupported in this build (no ECMAScript source parser).
// The subcommand still exists so `corevm eval` gives a clear, typed error
// rather than "unknown command" — consistent with vm/dispatch.go's
// recognized-but-unsupported opcode idiom.
func newEvalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval <source>",
		Short: "Evaluate ECMAScript source text (unsupported in this build)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt := bindings.Init(vmConfigOptions()...)
			_, err := rt.Eval(args[0])
			return err
		},
	}
}
