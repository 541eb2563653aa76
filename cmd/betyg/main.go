package main

import (
	"flag"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/betyg/calculators"
	"github.com/shrimpsizemoose/betyg/internal/app"
	"github.com/shrimpsizemoose/betyg/internal/calc"
	"github.com/shrimpsizemoose/betyg/internal/ui"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	registry := calc.NewRegistry()
	calculators.Register(registry)

	service, err := app.NewService(*configPath, registry)
	if err != nil {
		logger.Error.Fatalf("Failed to start: %v", err)
	}
	defer service.Close()

	ui.NewMenu(service).Run()
}
