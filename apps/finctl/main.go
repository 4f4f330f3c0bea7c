package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/finboard/finboard/apps/finctl/cmd"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "finctl crashed: %v\n", r)
			if os.Getenv("FINBOARD_DEBUG") != "" {
				debug.PrintStack()
			}
			os.Exit(2)
		}
	}()

	cmd.Execute()
}
