package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"pet-wellness/internal/domain/periods"
	"pet-wellness/internal/domain/vitals"
	"pet-wellness/internal/domain/wellness"
	"pet-wellness/internal/platform/logger"
)

// dataset es el archivo de entrada: las cuatro series de una mascota.
type dataset struct {
	PetID   string `json:"pet_id"`
	Species string `json:"species"`
	wellness.Series
}

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	level := logger.Warn
	if cfg.Verbose {
		level = logger.Debug
	}
	log := logger.New(logger.Options{Level: level, Output: os.Stderr, App: "wellness-report"})

	out := io.Writer(os.Stdout)
	if cfg.OutPath != "" {
		f, err := os.Create(cfg.OutPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := run(cfg, log, out); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(cfg Config, log logger.Logger, out io.Writer) error {
	raw, err := os.ReadFile(cfg.InPath)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	var ds dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return fmt.Errorf("decode dataset: %w", err)
	}

	species := vitals.ParseSpecies(firstNonEmpty(cfg.Species, ds.Species))
	g, _ := periods.ParseGranularity(cfg.Granularity)
	loc, _ := time.LoadLocation(cfg.TZName)

	var rng periods.Range
	if cfg.Now != "" {
		rng.To, _ = time.Parse(time.RFC3339, cfg.Now)
		rng.To = rng.To.In(loc)
	}
	if cfg.From != "" {
		rng.From, _ = time.Parse(time.RFC3339, cfg.From)
		rng.From = rng.From.In(loc)
	}

	log.Debug("dataset loaded", map[string]any{
		"vitals":      len(ds.Vitals),
		"diary":       len(ds.Diary),
		"analyses":    len(ds.Analyses),
		"medications": len(ds.Medications),
		"species":     string(species),
	})

	svc := wellness.NewService(nil, wellness.WithLogger(log), wellness.WithLocation(loc))
	rep, err := svc.Compute(wellness.ReportRequest{
		PetID:       firstNonEmpty(ds.PetID, "dataset"),
		Species:     species,
		Range:       rng,
		Granularity: g,
	}, ds.Series)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	if cfg.Pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(rep)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
