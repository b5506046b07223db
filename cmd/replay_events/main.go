// Command replay_events runs a recorded event feed through the full copy
// pipeline against dry-run venue adapters and a throwaway database, then
// prints the outcome per event. Useful for validating a feed export or a rule
// configuration before pointing the live service at it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"

	"copyTradeBot/config"
	"copyTradeBot/internal/adapters/dryrun"
	"copyTradeBot/internal/adapters/jsonfeed"
	"copyTradeBot/internal/adapters/logger"
	"copyTradeBot/internal/adapters/sqlite"
	"copyTradeBot/internal/app"
	"copyTradeBot/internal/domain"
	"copyTradeBot/internal/ports"
	"copyTradeBot/internal/router"
)

func main() {
	feedPath := flag.String("feed", "", "path to the JSON-lines event feed (defaults to EVENT_FEED_PATH)")
	keepDB := flag.String("db", "", "path for the replay database (defaults to a temp file, removed afterwards)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if *feedPath != "" {
		cfg.EventFeedPath = *feedPath
	}

	appLogger := logger.NewStdLogger(logger.LevelWarn) // Keep replay output readable
	ctx := context.Background()

	dbPath := *keepDB
	if dbPath == "" {
		tmpDir, err := os.MkdirTemp("", "replay-events-*")
		if err != nil {
			log.Fatalf("Error creating temp dir: %v", err)
		}
		defer os.RemoveAll(tmpDir)
		dbPath = filepath.Join(tmpDir, "replay.db")
	}

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: dbPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("Error opening replay database: %v", err)
	}
	defer repo.Close()

	var adapters []ports.VenueAdapter
	for _, venue := range []domain.Venue{domain.VenueGMX, domain.VenueOstium, domain.VenueBinance} {
		dry, err := dryrun.New(venue, appLogger)
		if err != nil {
			log.Fatalf("Error creating dry-run adapter: %v", err)
		}
		adapters = append(adapters, dry)
	}

	rtr, err := router.New(router.Config{Adapters: adapters, Mappings: repo, Logger: appLogger})
	if err != nil {
		log.Fatalf("Error creating router: %v", err)
	}

	source, err := jsonfeed.New(cfg.EventFeedPath, appLogger)
	if err != nil {
		log.Fatalf("Error opening event feed: %v", err)
	}
	statsProvider := permissiveStats{}

	svc, err := app.NewCopyService(cfg, appLogger, source, statsProvider, repo, repo, rtr)
	if err != nil {
		log.Fatalf("Error creating copy service: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "Trade\tType\tVenue\tStatus\tDetail")

	cursor := ""
	total := 0
	counts := map[domain.ExecutionStatus]int{}
	for {
		batch, next, err := source.Poll(ctx, cursor, cfg.PollBatchSize)
		if err != nil {
			log.Fatalf("Error reading feed: %v", err)
		}
		if len(batch) == 0 {
			break
		}
		for _, raw := range batch {
			total++
			result, err := svc.ProcessEvent(ctx, raw)
			if err != nil {
				fmt.Fprintf(w, "%s\t%s\t%s\tDROPPED\t%v\n", raw.SourceTradeID, raw.Type, raw.Venue, err)
				continue
			}
			counts[result.Status]++
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", raw.SourceTradeID, raw.Type, raw.Venue, result.Status, result.Error)
		}
		cursor = next
	}
	w.Flush()

	fmt.Printf("\nReplayed %d events: %d success, %d skipped, %d failed\n",
		total, counts[domain.StatusSuccess], counts[domain.StatusSkipped], counts[domain.StatusFailed])
}

// permissiveStats passes every trader so replays exercise the rule gate and
// router without needing a stats export.
type permissiveStats struct{}

func (permissiveStats) StatsFor(ctx context.Context, traderID string) (domain.TraderStats, error) {
	return domain.TraderStats{TraderID: traderID, HistoricalROI: 1, IsConsistent: true}, nil
}
