package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/novaframes/content-admin/internal/records/domain"
	"github.com/novaframes/content-admin/internal/records/service"
	"github.com/novaframes/content-admin/internal/search"
)

var listQuery search.Query

var listCmd = &cobra.Command{
	Use:   "list [collection]",
	Short: "Show record counts or the records of one collection",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := service.NewCollections(current.backends.Store, current.backends.Blobs)
		if len(args) == 0 {
			return listCounts(cmd, svc)
		}
		return listRecords(cmd, svc, args[0])
	},
}

func listCounts(cmd *cobra.Command, svc *service.Collections) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COLLECTION\tRECORDS")
	for _, s := range domain.AllSchemas() {
		records, err := svc.ListAll(cmd.Context(), s.Collection)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\n", s.Collection, len(records))
	}
	return w.Flush()
}

func listRecords(cmd *cobra.Command, svc *service.Collections, name string) error {
	schema, err := domain.Lookup(name)
	if err != nil {
		return err
	}
	records, err := svc.ListAll(cmd.Context(), schema.Collection)
	if err != nil {
		return err
	}
	q := listQuery
	q.Fields = schema.SearchFields
	return writeJSON(cmd.OutOrStdout(), search.Filter(records, q))
}

func init() {
	listCmd.Flags().StringVar(&listQuery.Term, "q", "", "only records whose search fields contain this term")
	listCmd.Flags().StringVar(&listQuery.Category, "category", "", "only projects in this category")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
