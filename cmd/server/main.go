package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/betyg/calculators"
	"github.com/shrimpsizemoose/betyg/internal/app"
	"github.com/shrimpsizemoose/betyg/internal/calc"
	"github.com/shrimpsizemoose/betyg/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	registry := calc.NewRegistry()
	calculators.Register(registry)

	service, err := app.NewService(*configPath, registry)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	gradeHandler := handlers.NewGradeHandler(service)

	http.HandleFunc("GET /api/v1/courses/{course}/report", gradeHandler.HandleReport)
	http.HandleFunc("GET /api/v1/courses/{course}/grades", gradeHandler.HandleStudentGrades)

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting betyg server on %s", service.Config.Server.Port)
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Betyg server failed: %v", err)
	}
}
