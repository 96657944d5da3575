package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyjs/corevm/bindings"
	"github.com/tinyjs/corevm/bytecode"
)

func init() {
	rootCmd.AddCommand(newOpcodesCmd())
}

// newOpcodesCmd lists every opcode this build's loader/dispatch loop
// recognizes, spec.md §6's opcode-inspection capability. --file
// <bytecode-file> instead prints that file's static disassembly
// (bytecode.Disassemble) one instruction per line, modeled on
// cmd/hivectl's plain-text dump subcommands rather than an interactive
// browser — this build carries no TUI dependency (see DESIGN.md's
// cmd/corevm entry for why bubbletea/lipgloss/sahilm-fuzzy were dropped).
func newOpcodesCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "opcodes",
		Short: "List every bytecode opcode this build recognizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				return dumpDisassembly(file)
			}
			for i := 0; i < 256; i++ {
				op := bytecode.Op(i)
				name := op.String()
				if name == "unknown_op" {
					continue
				}
				fmt.Printf("%3d  %s\n", i, name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Print a compiled bytecode file's static disassembly instead")
	return cmd
}

func dumpDisassembly(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return &usageError{msg: fmt.Sprintf("read %s: %v", path, err)}
	}
	rt := bindings.Init(vmConfigOptions()...)
	code, err := bytecode.Load(b, rt.Context().Pool)
	if err != nil {
		return &loadError{msg: err.Error()}
	}
	for _, instr := range bytecode.Disassemble(code) {
		fmt.Printf("%6d  %-20s %d\n", instr.IP, instr.Op.String(), instr.Operand)
	}
	return nil
}
