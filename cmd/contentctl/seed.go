package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/novaframes/content-admin/internal/records/domain"
	"github.com/novaframes/content-admin/internal/records/repository"
	"github.com/novaframes/content-admin/internal/records/service"
)

//go:embed seed.yaml
var defaultSeed []byte

// SeedData is the YAML layout accepted by the seed command. Records carrying
// an "id" are written in place; the rest get a generated id.
type SeedData struct {
	Collections map[string][]map[string]any `yaml:"collections"`
	Content     map[string]map[string]any   `yaml:"content"`
}

var seedCmd = &cobra.Command{
	Use:   "seed [fixture.yaml]",
	Short: "Load records and content documents from a YAML file",
	Long: `Load records and content documents from a YAML file.

Without a fixture the built-in sample data is used. Seeding is idempotent for
records that carry an id.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := defaultSeed
		if len(args) == 1 {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}
			raw = b
		}

		data, err := parseSeed(raw)
		if err != nil {
			return err
		}
		n, err := seed(cmd.Context(), current.backends.Store, data, current.log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d records\n", n)
		return nil
	},
}

func parseSeed(raw []byte) (SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return SeedData{}, fmt.Errorf("parse seed file: %w", err)
	}
	return data, nil
}

// seed validates every entry before writing any of them.
func seed(ctx context.Context, store repository.Store, data SeedData, log *zap.Logger) (int, error) {
	type pending struct {
		schema domain.Schema
		body   domain.Record
	}

	var records []pending
	for name, items := range data.Collections {
		schema, err := domain.Lookup(name)
		if err != nil {
			return 0, err
		}
		for i, item := range items {
			body := domain.Normalize(domain.Record(item))
			if err := schema.Prepare(body); err != nil {
				return 0, fmt.Errorf("%s[%d]: %w", name, i, err)
			}
			records = append(records, pending{schema: schema, body: body})
		}
	}

	type pendingDoc struct {
		doc  domain.ContentDoc
		body domain.Record
	}

	var docs []pendingDoc
	for key, body := range data.Content {
		doc, err := domain.LookupContent(key)
		if err != nil {
			return 0, err
		}
		docs = append(docs, pendingDoc{doc: doc, body: domain.Normalize(domain.Record(body))})
	}

	count := 0
	for _, p := range records {
		id := p.body.ID()
		body := p.body.Body()
		var err error
		if id != "" {
			err = store.Set(ctx, p.schema.Collection, id, body, false)
		} else {
			id, err = store.Create(ctx, p.schema.Collection, body)
		}
		if err != nil {
			return count, fmt.Errorf("seed %s: %w", p.schema.Collection, err)
		}
		log.Debug("seeded record", zap.String("collection", string(p.schema.Collection)), zap.String("id", id))
		count++
	}

	content := service.NewContent(store)
	for _, d := range docs {
		if _, err := content.Save(ctx, d.doc, d.body); err != nil {
			return count, fmt.Errorf("seed content %s: %w", d.doc.Key, err)
		}
		count++
	}
	return count, nil
}
