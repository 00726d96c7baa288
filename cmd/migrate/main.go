// Command migrate manages the database schema.
//
//	migrate up
//	migrate down
//	migrate steps -2
//	migrate version
//	migrate force 3
//	migrate create add_gift_notes
//	migrate list
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
