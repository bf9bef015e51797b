// Package main provides the entry point for mipsdyn.
// mipsdyn is a MIPS CPU core that executes code through a translation cache.
//
// For the full CLI, use: go run ./cmd/mipsdyn
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/mipsdyn/model"
)

func main() {
	fmt.Println("mipsdyn - MIPS dynamic translation core")
	fmt.Println("")
	fmt.Println("Usage: mipsdyn [options] <program.elf>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -c, --config       Machine configuration JSON file")
	fmt.Println("  -m, --model        Processor model")
	fmt.Println("  -d, --disassemble  Disassemble N instructions from the entry point")
	fmt.Println("  -n, --cycles       Run at most N instructions")
	fmt.Println("  -v, --verbose      Trace every executed instruction")
	fmt.Println("")
	fmt.Println("Models:")
	for _, m := range model.Catalog() {
		fmt.Println("  " + m.String())
	}
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/mipsdyn' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/mipsdyn' instead.")
	}
}
