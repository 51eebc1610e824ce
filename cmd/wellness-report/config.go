package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pet-wellness/internal/domain/periods"
	"pet-wellness/internal/domain/vitals"
)

type Config struct {
	InPath      string
	OutPath     string // vacío = stdout
	Species     string
	Granularity string
	From        string
	Now         string
	TZName      string
	Pretty      bool
	Verbose     bool
}

func (c Config) Validate() error {
	if c.InPath == "" {
		return errors.New("missing -in")
	}
	if _, err := periods.ParseGranularity(c.Granularity); err != nil {
		return fmt.Errorf("invalid -granularity %q", c.Granularity)
	}
	if c.Species != "" && vitals.ParseSpecies(c.Species) == vitals.SpeciesOther && !strings.EqualFold(c.Species, "other") {
		return fmt.Errorf("invalid -species %q", c.Species)
	}
	if c.Now != "" {
		if _, err := time.Parse(time.RFC3339, c.Now); err != nil {
			return fmt.Errorf("invalid -now: %w", err)
		}
	}
	if c.From != "" {
		if _, err := time.Parse(time.RFC3339, c.From); err != nil {
			return fmt.Errorf("invalid -from: %w", err)
		}
	}
	if _, err := time.LoadLocation(c.TZName); err != nil {
		return fmt.Errorf("invalid -tz: %w", err)
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		InPath:      filepath.FromSlash("dataset.json"),
		Granularity: string(periods.Week),
		TZName:      "UTC",
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()

	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InPath, "in", cfg.InPath, "Path to the dataset JSON {species, vitals, diary, analyses, medications}")
	fs.StringVar(&cfg.OutPath, "out", "", "Write the report to this file instead of stdout")
	fs.StringVar(&cfg.Species, "species", "", "Override the dataset species (dog, cat, other)")
	fs.StringVar(&cfg.Granularity, "granularity", cfg.Granularity, "day, week, month, year or all")
	fs.StringVar(&cfg.From, "from", "", "Range start (RFC3339); only used with -granularity all")
	fs.StringVar(&cfg.Now, "now", "", "Anchor instant (RFC3339); defaults to the current time")
	fs.StringVar(&cfg.TZName, "tz", cfg.TZName, "IANA time zone for window boundaries")
	fs.BoolVar(&cfg.Pretty, "pretty", false, "Pretty-print the report JSON")
	fs.BoolVar(&cfg.Verbose, "v", false, "Log progress to stderr")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/wellness-report -in dataset.json -pretty")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/wellness-report -in dataset.json -granularity month -now 2024-06-14T12:00:00Z")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected args: %v", fs.Args())
	}
	return cfg, nil
}
