package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// a .env next to the job is optional
	_ = godotenv.Load()

	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
