package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/viper"

	"github.com/transmute-lang/transmute/internal/artifacts"
	"github.com/transmute-lang/transmute/internal/config"
	"github.com/transmute-lang/transmute/internal/includer"
	"github.com/transmute-lang/transmute/internal/ir"
	"github.com/transmute-lang/transmute/internal/parser"
	"github.com/transmute-lang/transmute/internal/slicer"
	"github.com/transmute-lang/transmute/internal/transform"
)

// loadConfig merges file/env settings over the defaults.
func loadConfig() *config.Config {
	cfg := config.Default()
	if err := viper.Unmarshal(cfg); err != nil {
		log.Printf("Warning: invalid configuration, using defaults: %v", err)
		return config.Default()
	}
	return cfg
}

// loadUnit parses one file, resolves its includes, and slices every
// composite type. It returns the (possibly merged) graph and the
// include list.
func loadUnit(cfg *config.Config, path string) (*ir.Graph, []*ir.Graph, error) {
	g, err := parser.ParseFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	inc, err := includer.New(cfg.Include.SearchRoot,
		includer.WithIgnorePatterns(cfg.Include.Ignore),
		includer.WithAlternateExtension(cfg.Include.AlternateExt),
	)
	if err != nil {
		return nil, nil, err
	}
	defer inc.Close()

	g, includes, err := inc.Resolve(g)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve includes for %s: %w", path, err)
	}

	if err := slicer.Slice(g); err != nil {
		return nil, nil, fmt.Errorf("failed to slice %s: %w", path, err)
	}
	return g, includes, nil
}

// transformUnit runs the oracle over the loaded graph.
func transformUnit(ctx context.Context, cfg *config.Config, g *ir.Graph) error {
	var opts []transform.Option
	if cfg.Oracle.CacheLocation != "" {
		cache, err := artifacts.Open(cfg.Oracle.CacheLocation)
		if err != nil {
			log.Printf("Warning: artifact cache unavailable: %v", err)
		} else {
			defer cache.Close()
			opts = append(opts, transform.WithCache(cache))
		}
	}

	orch := transform.NewOrchestrator(transform.MockOracle{}, opts...)
	if err := orch.TransformGraph(ctx, g); err != nil {
		// Per-node failures are already logged; the run continues.
		log.Printf("Warning: some fragments were left untransformed: %v", err)
	}
	return nil
}
