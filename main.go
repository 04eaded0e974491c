package main

import (
	"flag"
	"log"

	"salesvc/cmd"
)

func main() {
	var port string
	var configPath string
	flag.StringVar(&port, "port", "", "server port (overrides config)")
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	app, err := cmd.NewApp(configPath)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := app.Run(port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
