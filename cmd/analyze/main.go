// Command analyze runs the deterministic focus pipeline for one user, or for a
// JSON file of records, and prints the result to the terminal.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"focusflow/backend/internal/analytics"
	"focusflow/backend/internal/config"
	"focusflow/backend/internal/db"
	"focusflow/backend/internal/model"
	"focusflow/backend/internal/repository"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "analyze:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	cfg := config.Load()

	flags := flag.NewFlagSet("analyze", flag.ContinueOnError)
	file := flags.String("file", "", "JSON file with an array of activity records")
	user := flags.String("user", "", "user email or id to load from the database")
	days := flags.Int("days", cfg.LookbackDays, "days of history to analyse")
	at := flags.String("now", "", "analysis time (RFC3339), defaults to the current time")
	rulesPath := flags.String("rules", cfg.ClassifierRulesPath, "YAML classifier keyword table")
	asJSON := flags.Bool("json", false, "print the report as JSON")
	if err := flags.Parse(args); err != nil {
		return err
	}

	now := time.Now().In(cfg.Location)
	if *at != "" {
		parsed, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			return fmt.Errorf("parse -now: %w", err)
		}
		now = parsed
	}

	keywords, err := analytics.LoadKeywordTable(*rulesPath)
	if err != nil {
		return err
	}

	var records []model.ActivityRecord
	switch {
	case *file != "":
		records, err = loadFile(*file)
	case *user != "":
		records, err = loadUser(context.Background(), cfg, *user, now.AddDate(0, 0, -*days), now)
	default:
		return fmt.Errorf("one of -file or -user is required")
	}
	if err != nil {
		return err
	}

	report := analytics.NewClassifier(keywords).Analyze(records, now)
	if *asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	}
	printReport(out, report)
	return nil
}

func loadFile(path string) ([]model.ActivityRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	var records []model.ActivityRecord
	if err := json.Unmarshal(content, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	for i := range records {
		if strings.TrimSpace(records[i].CategoryName) == "" {
			records[i].CategoryName = model.DefaultCategoryName
		}
	}
	return records, nil
}

func loadUser(ctx context.Context, cfg config.Config, user string, from, to time.Time) ([]model.ActivityRecord, error) {
	database, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	defer database.Close()

	userID := user
	if strings.Contains(user, "@") {
		found, lookupErr := repository.NewUserRepository(database).GetByEmail(ctx, strings.ToLower(user))
		if lookupErr != nil {
			return nil, fmt.Errorf("find user %s: %w", user, lookupErr)
		}
		userID = found.ID
	}
	return repository.NewActivityRepository(database).ListRange(ctx, userID, from, to)
}
