package main

import (
	"fmt"
	"os"

	"github.com/cndoit18/codecrafters-http-server-go/app"
	"github.com/cndoit18/codecrafters-http-server-go/config"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	if err := app.New(cfg).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}
