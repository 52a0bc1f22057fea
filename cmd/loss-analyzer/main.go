package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"Go2NetLoss/internal/config"
	"Go2NetLoss/internal/engine/manager"
	"Go2NetLoss/internal/publish"
	"Go2NetLoss/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the configuration file")
	inputDir := flag.String("input", "", "directory with the preprocessed measurement files (overrides config)")
	outputDir := flag.String("output", "", "directory for the result files (overrides config)")
	flag.Parse()

	// 1. Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *inputDir != "" {
		cfg.Analyzer.InputDir = *inputDir
	}
	if *outputDir != "" {
		cfg.Analyzer.OutputDir = *outputDir
	}
	log.Println("Configuration loaded successfully.")

	// 2. Initialize optional sinks
	var opts []manager.Option
	if cfg.Writers.ClickHouse.Enabled {
		chWriter, err := writer.NewClickHouseWriter(cfg.Writers.ClickHouse)
		if err != nil {
			log.Fatalf("Failed to create ClickHouse writer: %v", err)
		}
		opts = append(opts, manager.WithSummaryWriter(chWriter))
	}
	if cfg.Publisher.Enabled {
		publisher, err := publish.NewPublisher(cfg.Publisher)
		if err != nil {
			log.Fatalf("Failed to create publisher: %v", err)
		}
		opts = append(opts, manager.WithSummaryWriter(publisher))
	}
	if cfg.Timelines.Enabled {
		opts = append(opts, manager.WithTimelineWriter(writer.NewGobWriter(cfg.Timelines.RootPath)))
		log.Printf("Dumping loss timelines to '%s'", cfg.Timelines.RootPath)
	}

	// 3. Initialize the batch driver
	managerImpl, err := manager.NewManager(cfg, opts...)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}
	defer managerImpl.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Analyze every scenario
	log.Printf("Analyzing '%s' into '%s'...", cfg.Analyzer.InputDir, cfg.Analyzer.OutputDir)
	report, err := managerImpl.Run(ctx)
	if err != nil {
		managerImpl.Close()
		log.Fatalf("Analysis failed: %v", err)
	}
	log.Printf("Run %s complete: %d scenarios in %s.", report.RunID, len(report.Groups), report.Duration)
}
