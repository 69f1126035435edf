package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/cwbudde/boxtune/internal/driver"
)

// exitOverwriteDeclined is the distinct status used when the user refuses
// to overwrite an existing checkpoint. Nothing is written in that case.
const exitOverwriteDeclined = 3

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, driver.ErrOverwriteDeclined) {
			fmt.Fprintf(os.Stderr, "Aborted: %v\n", err)
			os.Exit(exitOverwriteDeclined)
		}
		log.Fatalf("Error: %v\n", err)
	}
}
