package main

import (
	"log"
	"os"

	"github.com/juceldev/ColoringBook/internal/core"
	"github.com/juceldev/ColoringBook/internal/server"
)

func main() {
	if err := core.LoadEnv(); err != nil {
		log.Printf("%v", err)
	}

	configPath := core.ConfigPath()
	config, err := core.LoadConfig(configPath)
	if err != nil {
		log.Printf("failed to load config from %s: %v", configPath, err)
		panic(err)
	}

	if err := server.Serve(config); err != nil {
		log.Printf("server error: %v", err)
		os.Exit(1)
	}
}
