package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"addictiontube/internal/searchui"
)

func newShellCmd(historyFile string) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive unified search",
		Long: `Each line is sent as a unified search.
  :cat <song|poem|story>  switch category
  exit, quit              leave the shell`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, historyFile)
		},
	}
}

func runShell(cmd *cobra.Command, historyFile string) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(l string) []string {
		if !strings.HasPrefix(l, ":cat ") {
			return nil
		}
		var out []string
		for _, c := range searchui.Categories {
			if cand := ":cat " + c; strings.HasPrefix(cand, l) {
				out = append(out, cand)
			}
		}
		return out
	})

	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	w := cmd.OutOrStdout()
	svc := service()
	opts := searchOptions{category: searchui.Categories[0], unified: true}

	fmt.Fprintln(w, "AddictionTube Interactive Shell")
	for {
		input, err := line.Prompt(fmt.Sprintf("addictiontube[%s]> ", opts.category))
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read line: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch {
		case input == "exit" || input == "quit":
			return nil
		case strings.HasPrefix(input, ":cat"):
			c := strings.TrimSpace(strings.TrimPrefix(input, ":cat"))
			if !slices.Contains(searchui.Categories, c) {
				fmt.Fprintf(w, "unknown category %q (want one of %s)\n", c, strings.Join(searchui.Categories, ", "))
				continue
			}
			opts.category = c
		default:
			if err := runSearch(cmd.Context(), w, svc, input, opts); err != nil {
				fmt.Fprintf(w, "Error: %v\n", err)
			}
		}
	}
}
