package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"Go2NetLoss/internal/config"
	"Go2NetLoss/internal/model"
	"Go2NetLoss/internal/publish"
	"Go2NetLoss/internal/query"
	"Go2NetLoss/internal/writer"
)

func main() {
	mode := flag.String("mode", "api", "Query mode: 'api' to query via HTTP API, 'direct' to query ClickHouse directly, 'watch' to follow NATS summaries.")
	configPath := flag.String("config", "configs/config.yaml", "Path to the configuration file.")
	apiURL := flag.String("url", "http://localhost:8080", "Base URL of the loss API.")
	scenario := flag.String("scenario", "", "Scenario as <type>/<config> (optional).")
	flag.Parse()

	log.Printf("Running in '%s' mode.", *mode)

	switch *mode {
	case "api":
		queryViaAPI(*apiURL, *scenario)
	case "direct", "watch":
		cfg, err := config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		if *mode == "direct" {
			directQueryClickHouse(cfg.Writers.ClickHouse, *scenario)
		} else {
			watch(cfg.Publisher)
		}
	default:
		log.Fatalf("Invalid mode: %s. Use 'api', 'direct' or 'watch'.", *mode)
	}
}

func queryViaAPI(baseURL, scenario string) {
	url := strings.TrimRight(baseURL, "/") + "/api/v1/results"
	if scenario != "" {
		url += "/" + scenario
	}
	log.Printf("Sending request to %s", url)

	resp, err := http.Get(url)
	if err != nil {
		log.Fatalf("Error sending request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Error reading response body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("API returned non-200 status code: %d\nResponse: %s", resp.StatusCode, string(respBody))
	}

	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, respBody, "", "  "); err != nil {
		log.Printf("Could not prettify JSON, printing raw response:")
		fmt.Println(string(respBody))
		return
	}
	fmt.Println(prettyJSON.String())
}

func directQueryClickHouse(cfg config.ClickHouseConfig, scenario string) {
	q, err := query.NewClickHouseQuerier(cfg)
	if err != nil {
		log.Fatalf("Error connecting to ClickHouse: %v", err)
	}
	defer q.Close()
	log.Println("Successfully connected to ClickHouse.")

	ctx := context.Background()
	var groups []*model.GroupSummary
	if errorType, configValue, ok := strings.Cut(scenario, "/"); ok {
		g, err := q.GetGroup(ctx, errorType, configValue)
		if err != nil {
			log.Fatalf("Error querying scenario: %v", err)
		}
		groups = append(groups, g)
	} else {
		groups, err = q.ListGroups(ctx)
		if err != nil {
			log.Fatalf("Error querying scenarios: %v", err)
		}
	}

	if len(groups) == 0 {
		log.Println("No data found.")
	}
	for _, g := range groups {
		printSummary(g)
	}
}

func watch(cfg config.PublisherConfig) {
	sub, err := publish.NewSubscriber(cfg)
	if err != nil {
		log.Fatalf("Failed to create subscriber: %v", err)
	}
	defer sub.Close()

	if err := sub.Start(printSummary); err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

func printSummary(g *model.GroupSummary) {
	fmt.Printf("Scenario: %s_%s (run %s, iterations %v)\n", g.NetworkErrorType, g.ConfigValue, g.RunID, g.Iterations)
	for _, row := range g.Rows {
		values := make([]string, len(row.Values))
		for i, v := range row.Values {
			values[i] = writer.FormatValue(v)
		}
		fmt.Printf("  %-12s %s\n", row.Label, strings.Join(values, ", "))
	}
	fmt.Println("---------------------")
}
