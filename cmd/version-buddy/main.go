package main

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jimdowning-cyclops/version-buddy-go/internal/config"
	"github.com/jimdowning-cyclops/version-buddy-go/internal/git"
	"github.com/jimdowning-cyclops/version-buddy-go/internal/release"
)

// main plans the next release of the repository in the working directory
// and writes the plan as JSON to stdout. Logs go to stderr; set
// VERSION_BUDDY_VERBOSE=true for debug logs.
func main() {
	log, err := newLogger(os.Getenv("VERSION_BUDDY_VERBOSE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(".", log); err != nil {
		log.Error("planning failed", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(verbose string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose == "true" || verbose == "yes" {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

func run(dir string, log *zap.Logger) error {
	cfg, err := config.LoadOrDefault(dir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	repo, err := git.Open(dir, log)
	if err != nil {
		return err
	}

	planner, err := release.NewPlanner(repo, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create planner: %w", err)
	}

	plan, err := planner.Plan()
	if err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(plan)
}
