package main

import (
	"fmt"
	"os"

	"smartcommerce-api/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	// .env は任意
	_ = godotenv.Load()

	if err := cli.RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
