package main

import (
	"log"
	"os"

	"github.com/abelzeko/transit-board/internal/cli"
)

func main() {
	// Configure logging
	log.SetOutput(os.Stdout)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := cli.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
