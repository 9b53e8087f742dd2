package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"addictiontube/internal/search"
	"addictiontube/internal/searchui"
)

type searchOptions struct {
	category string
	page     int
	perPage  int
	unified  bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search songs, poems and stories",
		Example: `  addictiontube search recovery --category poem
  addictiontube search "rock & roll" --category song --page 2 --unified=false`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), cmd.OutOrStdout(), service(), strings.Join(args, " "), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.category, "category", "c", searchui.Categories[0], "Category: song, poem or story")
	cmd.Flags().IntVar(&opts.page, "page", search.DefaultPage, "Page (legacy search only)")
	cmd.Flags().IntVar(&opts.perPage, "per-page", search.DefaultPerPage, "Results per page (legacy search only)")
	cmd.Flags().BoolVar(&opts.unified, "unified", true, "Use the unified backend")
	return cmd
}

var errEmptyQuery = errors.New("empty query")

// runSearch drives the same state machine as the search page and prints the
// rendered result area.
func runSearch(ctx context.Context, w io.Writer, svc *search.Service, query string, opts searchOptions) error {
	start := time.Now()

	m := searchui.NewMachine()
	req, ok := m.Submit(query, opts.category)
	if !ok {
		return errEmptyQuery
	}

	path := search.PathUnifiedSearch
	if !opts.unified {
		path = search.PathSearch
		req.Page, req.PerPage = opts.page, opts.perPage
	}

	fmt.Fprintf(w, "\n%s results for %q\n\n", searchui.CategoryLabel(req.Category), req.Query)

	reply, err := svc.Fetch(ctx, path, req)
	if err != nil {
		m.Fail(err)
	} else {
		m.Receive(reply.Body)
	}
	fmt.Fprint(w, searchui.RenderText(m.View()))

	if reply != nil && reply.Trace != "" {
		fmt.Fprintf(w, "\n[Trace]: %s", reply.Trace)
	}
	fmt.Fprintf(w, "\n⏱ %v\n\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func newRagCmd() *cobra.Command {
	var (
		category string
		unified  bool
	)
	cmd := &cobra.Command{
		Use:   "rag <query>",
		Short: "Ask for a RAG answer",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errEmptyQuery
			}
			answer, failed, err := service().Answer(cmd.Context(), query, category, unified)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if failed != nil {
				fmt.Fprintf(w, "Error: %s\n", failed.Error)
				if failed.Details != "" {
					fmt.Fprintf(w, "  %s\n", failed.Details)
				}
				return nil
			}
			if answer.Answer == "" {
				fmt.Fprintf(w, "%s\n", answer.Raw)
				return nil
			}
			fmt.Fprintf(w, "%s\n", answer.Answer)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", searchui.Categories[0], "Category id")
	cmd.Flags().BoolVar(&unified, "unified", true, "Use the unified backend")
	return cmd
}
