package main

import (
	"fmt"
	"log"
	"os"

	"Go2NetLoss/internal/timestamp"
	"Go2NetLoss/internal/writer"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts/timeline/main.go <bucket.dat>")
		os.Exit(1)
	}
	path := os.Args[1]

	results, err := writer.ReadTimeline(path)
	if err != nil {
		log.Fatalf("Failed to read timeline: %v", err)
	}

	fmt.Println("timestamp,total,count,loss_percentage,cum_total,cum_count,cum_loss_percentage")
	for _, r := range results {
		fmt.Printf("%s,%d,%d,%s,%d,%d,%s\n",
			timestamp.Format(r.Timestamp),
			r.Total, r.Count, writer.FormatValue(r.LossPercentage),
			r.CumTotal, r.CumCount, writer.FormatValue(r.CumLossPercentage),
		)
	}
}
