// Command copy_stats prints a summary of the bookkeeping database: processed
// event counts by status, the most recent outcomes, and the current trade
// mappings.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"copyTradeBot/config"
	"copyTradeBot/internal/adapters/logger"
	"copyTradeBot/internal/adapters/sqlite"
	"copyTradeBot/internal/domain"
)

func main() {
	dbPath := flag.String("db", "", "path to the bookkeeping database (defaults to DB_PATH)")
	recent := flag.Int("recent", 20, "number of recent outcomes to show")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	appLogger := logger.NewStdLogger(logger.LevelError)
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("Error opening database %s: %v", cfg.DBPath, err)
	}
	defer repo.Close()

	ctx := context.Background()

	counts, err := repo.CountByStatus(ctx)
	if err != nil {
		log.Fatalf("Error counting processed events: %v", err)
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	fmt.Printf("Processed events: %d total, %d success, %d skipped, %d failed\n\n",
		total, counts[domain.StatusSuccess], counts[domain.StatusSkipped], counts[domain.StatusFailed])

	records, err := repo.FindRecent(ctx, *recent)
	if err != nil {
		log.Fatalf("Error loading recent outcomes: %v", err)
	}
	if len(records) > 0 {
		fmt.Println("## Recent outcomes")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "Key\tStatus\tDetail\tAt")
		for _, rec := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				rec.IdempotencyKey, rec.Status, rec.Error, rec.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		w.Flush()
		fmt.Println()
	}

	mappings, err := repo.FindAllMappings(ctx)
	if err != nil {
		log.Fatalf("Error loading trade mappings: %v", err)
	}
	if len(mappings) == 0 {
		fmt.Println("No trade mappings recorded.")
		return
	}
	fmt.Println("## Trade mappings")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "Trade\tVenue\tOrder\tPosition\tLastIntent\tUpdated")
	for _, m := range mappings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			m.SourceTradeID, m.Venue, m.VenueOrderID, m.VenuePositionID, m.LastIntentType,
			m.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
	w.Flush()
}
