package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mikey/interview-scheduler/internal/adapters/gcal"
	"github.com/mikey/interview-scheduler/internal/config"
	"github.com/mikey/interview-scheduler/internal/core"
	"github.com/mikey/interview-scheduler/internal/logging"
	"go.uber.org/zap"
)

var (
	// Window flags
	startFlag    = flag.String("start", "", "Window start (RFC3339, default now)")
	endFlag      = flag.String("end", "", "Window end (RFC3339, default start+14d)")
	durationMins = flag.Int("duration", 60, "Slot duration in minutes")

	// Busy window sources
	busyFile   = flag.String("busy-file", "", "JSON file with busy windows ([{\"start\":...,\"end\":...}])")
	calendarID = flag.String("calendar", "", "Calendar id for a live free/busy query (uses config credentials)")

	// Output flags
	jsonOut = flag.Bool("json", false, "Output slots as JSON")
	verbose = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog = flag.Bool("json-log", false, "Output logs in JSON format")
)

type busyFileEntry struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	now := time.Now().UTC()
	windowStart := now
	if *startFlag != "" {
		windowStart, err = time.Parse(time.RFC3339, *startFlag)
		if err != nil {
			logger.Fatal("Invalid -start value", zap.Error(err))
		}
	}
	windowEnd := windowStart.AddDate(0, 0, 14)
	if *endFlag != "" {
		windowEnd, err = time.Parse(time.RFC3339, *endFlag)
		if err != nil {
			logger.Fatal("Invalid -end value", zap.Error(err))
		}
	}

	busy, err := loadBusyWindows(logger)
	if err != nil {
		logger.Fatal("Failed to load busy windows", zap.Error(err))
	}

	slots, err := core.ComputeSlots(windowStart, windowEnd, time.Duration(*durationMins)*time.Minute, busy)
	if err != nil {
		logger.Fatal("Failed to compute slots", zap.Error(err))
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(slots); err != nil {
			logger.Fatal("Failed to encode slots", zap.Error(err))
		}
		return
	}

	fmt.Printf("%d bookable slots between %s and %s (%d min each)\n",
		len(slots),
		windowStart.Format(time.RFC3339),
		windowEnd.Format(time.RFC3339),
		*durationMins)
	lastDay := ""
	for _, slot := range slots {
		day := slot.StartTime.Format("Mon 2006-01-02")
		if day != lastDay {
			fmt.Printf("\n%s\n", day)
			lastDay = day
		}
		fmt.Printf("  %s - %s\n", slot.StartTime.Format("15:04"), slot.EndTime.Format("15:04"))
	}
}

// loadBusyWindows reads busy windows from the -busy-file JSON file, from a
// live free/busy query when -calendar is set, or returns none
func loadBusyWindows(logger *zap.Logger) ([]core.BusyWindow, error) {
	if *busyFile != "" {
		data, err := os.ReadFile(*busyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read busy file: %w", err)
		}
		var entries []busyFileEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("failed to parse busy file: %w", err)
		}
		busy := make([]core.BusyWindow, 0, len(entries))
		for _, e := range entries {
			busy = append(busy, core.BusyWindow{Start: e.Start.UTC(), End: e.End.UTC()})
		}
		return busy, nil
	}

	if *calendarID != "" {
		cfg, err := config.New()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		gmailCfg := cfg.GetMail().Gmail

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		client, err := gcal.NewClient(ctx, gmailCfg.CredentialsFile, gmailCfg.TokenFile, cfg.GetCalendar().EventLocation, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create calendar client: %w", err)
		}

		windowStart := time.Now().UTC()
		if *startFlag != "" {
			windowStart, _ = time.Parse(time.RFC3339, *startFlag)
		}
		windowEnd := windowStart.AddDate(0, 0, 14)
		if *endFlag != "" {
			windowEnd, _ = time.Parse(time.RFC3339, *endFlag)
		}
		return client.BusyWindows(ctx, *calendarID, windowStart, windowEnd)
	}

	return nil, nil
}
