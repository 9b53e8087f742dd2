package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"addictiontube/internal/search"
)

// probePaths are the gateway proxy endpoints checked by probe.
var probePaths = []string{
	search.PathSearch,
	"/search-proxy.php",
	search.PathAnswer,
	search.PathUnifiedAnswer,
	search.PathUnifiedSearch,
}

type probeResult struct {
	path    string
	status  int
	bytes   int
	took    time.Duration
	verdict string
}

func newProbeCmd(perSecond float64) *cobra.Command {
	var (
		query    string
		category string
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Call every proxy endpoint once and report what came back",
		RunE: func(cmd *cobra.Command, _ []string) error {
			results, err := probe(cmd.Context(), cmd.ErrOrStderr(), service(),
				search.Request{Query: query, Category: category}, rate.Limit(perSecond))
			if err != nil {
				return err
			}
			printProbe(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "recovery", "Query sent to every endpoint")
	cmd.Flags().StringVarP(&category, "category", "c", "poem", "Category sent to every endpoint")
	return cmd
}

// probe paces the calls so a single run does not burst against the backend.
func probe(ctx context.Context, progress io.Writer, svc *search.Service, req search.Request, limit rate.Limit) ([]probeResult, error) {
	if limit <= 0 {
		limit = rate.Inf
	}
	limiter := rate.NewLimiter(limit, 1)
	bar := progressbar.NewOptions(len(probePaths),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("probing"),
		progressbar.OptionClearOnFinish(),
	)

	results := make([]probeResult, 0, len(probePaths))
	for _, path := range probePaths {
		if err := limiter.Wait(ctx); err != nil {
			return results, err
		}
		bar.Describe(path)

		start := time.Now()
		reply, err := svc.Fetch(ctx, path, req)
		res := probeResult{path: path, took: time.Since(start)}
		if err != nil {
			res.verdict = err.Error()
		} else {
			res.status = reply.Status
			res.bytes = len(reply.Body)
			res.verdict = verdict(path, reply)
		}
		results = append(results, res)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return results, nil
}

func verdict(path string, reply *search.Reply) string {
	if len(reply.Body) == 0 {
		return "empty body"
	}
	if reply.Status != http.StatusOK {
		return "status " + http.StatusText(reply.Status)
	}
	if path != search.PathSearch && path != search.PathUnifiedSearch {
		return "ok"
	}
	p, err := search.Decode(reply.Body)
	if err != nil {
		return "unexpected payload"
	}
	if p.Failed() {
		return "backend error: " + p.Err.Error
	}
	return fmt.Sprintf("ok (%d results)", len(p.Results))
}

func printProbe(w io.Writer, results []probeResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ENDPOINT\tSTATUS\tBYTES\tTOOK\tVERDICT")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", r.path, r.status, r.bytes, r.took.Round(time.Millisecond), r.verdict)
	}
	_ = tw.Flush()
}
