package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"bookclub/pkg/checkpoint"
	"bookclub/pkg/config"
	"bookclub/pkg/sheets"
	"bookclub/pkg/table"

	log "github.com/sirupsen/logrus"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose logging")
	configFile := flag.String("config", "bookclub.toml", "Path to the TOML config file")
	envFile := flag.String("env", ".env", "Optional .env file with environment overrides")
	initTab := flag.Bool("init", false, "Create the CheckpointStatus tab if missing and seed it for the current checkpoint")
	tab := flag.String("tab", "", "Print the records of this tab as JSON")
	checkpointID := flag.String("checkpoint", "", "Checkpoint ID to save a status for")
	member := flag.String("member", "", "Member ID to save a status for")
	status := flag.String("status", checkpoint.StatusNo, "Completion status, YES or NO")
	date := flag.String("date", "", "Completion date (defaults to today when status is YES)")

	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	if !*initTab && *tab == "" && *checkpointID == "" {
		log.Error("You must specify -init, -tab or -checkpoint")
		flag.Usage()
		os.Exit(1)
	}

	ds, err := config.NewDatastore(*configFile, *envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	ctx := context.Background()
	store, err := ds.Config.OpenStore(ctx)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", ds.Config.Store.Backend, err)
	}

	if *initTab {
		seeded, err := initStatusTab(ctx, store)
		if err != nil {
			log.Fatalf("Failed to initialise %s: %v", checkpoint.StatusTab, err)
		}
		fmt.Printf("seeded=%d\n", seeded)
	}
	if *tab != "" {
		if err := printTab(ctx, store, *tab); err != nil {
			log.Fatalf("Failed to read %s: %v", *tab, err)
		}
	}
	if *checkpointID != "" {
		if *member == "" {
			log.Fatal("-member is required with -checkpoint")
		}
		update := checkpoint.Update{
			MemberID:         *member,
			CompletionStatus: *status,
			UpdatedDate:      defaultDate(*status, *date, time.Now()),
		}
		res, err := checkpoint.Save(ctx, store, *checkpointID, []checkpoint.Update{update})
		if err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
		fmt.Printf("updated=%d added=%d\n", res.Updated, res.Added)
	}
}

// initStatusTab creates the CheckpointStatus tab when it is missing and
// seeds it, since saves are rejected while the tab has no data rows.
func initStatusTab(ctx context.Context, store sheets.Store) (int, error) {
	ti, ok := store.(sheets.TabInitializer)
	if !ok {
		return 0, fmt.Errorf("store %T cannot create tabs", store)
	}
	if err := ti.EnsureTab(ctx, checkpoint.StatusTab, checkpoint.StatusHeader); err != nil {
		return 0, err
	}
	return checkpoint.Seed(ctx, store)
}

func printTab(ctx context.Context, store sheets.Store, tab string) error {
	rows, err := store.Get(ctx, tab)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(table.Project(rows))
}

// defaultDate fills in today's date, formatted M/D/YYYY like the front end,
// when a member is marked complete without one.
func defaultDate(status, date string, now time.Time) string {
	if date != "" || checkpoint.NormalizeStatus(status) != checkpoint.StatusYes {
		return date
	}
	return now.Format("1/2/2006")
}
