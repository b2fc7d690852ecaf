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
	log.Println("Starting Transit Board bot...")

	if err := cli.ExecuteArgs(append([]string{"bot"}, os.Args[1:]...)...); err != nil {
		log.Fatalf("Bot stopped: %v", err)
	}
}
