package main

import (
	"flag"
	"os"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/betyg/internal/app"
	"github.com/shrimpsizemoose/betyg/internal/export"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	var courseID = flag.Int64("course", 0, "Course id to export")
	var outPath = flag.String("out", "", "Output CSV path (default stdout)")
	flag.Parse()

	if *courseID == 0 {
		logger.Error.Fatalf("A course id is required, use -course")
	}

	service, err := app.NewService(*configPath, nil)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			logger.Error.Fatalf("Failed to create %s: %v", *outPath, err)
		}
		defer f.Close()
		out = f
	}

	if err := export.WriteCourseCSV(service.Store, *courseID, out); err != nil {
		logger.Error.Fatalf("Export failed: %v", err)
	}
}
