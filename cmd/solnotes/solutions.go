package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eringen/solnotes/content"
	"github.com/eringen/solnotes/logging"
	"github.com/eringen/solnotes/solution"
)

const defaultBody = "## Approach\n\n## Complexity\n\n- Time: \n- Space: \n"

// service builds a solution service over the local checkout.
func (e *env) service() (*solution.Service, error) {
	var opts []content.LocalOption
	if e.cfg.GitCommits {
		opts = append(opts, content.WithGitCommits(e.cfg.CommitName, e.cfg.CommitEmail))
	}
	local, err := content.NewLocal(e.cfg.ContentRoot, opts...)
	if err != nil {
		return nil, err
	}
	return solution.NewService(solution.Config{
		Dir:   e.cfg.Dir,
		Retry: e.cfg.Retry,
		Tags:  e.cfg.Tags,
	}, local, solution.WithLogger(logging.ModuleLogger(e.logs, logging.ModuleSolution))), nil
}

func newListCmd(e *env) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List solutions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.service()
			if err != nil {
				return err
			}
			all, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(all)
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SLUG\tDIFFICULTY\tDATE\tTITLE")
			for _, s := range all {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Slug, s.Difficulty, s.Date, s.Title)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show <slug>",
		Short: "Print a solution file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.service()
			if err != nil {
				return err
			}
			s, ok, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("solution %q not found", args[0])
			}
			data, err := solution.Marshal(s)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newNewCmd(e *env) *cobra.Command {
	var (
		title      string
		difficulty string
		excerpt    string
		tags       []string
		file       string
	)
	cmd := &cobra.Command{
		Use:   "new <slug>",
		Short: "Create a solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := defaultBody
			if file != "" {
				data, err := readBody(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
				body = data
			}
			if title == "" {
				title = toTitle(args[0])
			}
			svc, err := e.service()
			if err != nil {
				return err
			}
			res, err := svc.Create(cmd.Context(), solution.Input{
				Title:      title,
				Slug:       args[0],
				Difficulty: solution.Difficulty(difficulty),
				Excerpt:    excerpt,
				Content:    body,
				Tags:       tags,
			})
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", svc.Path(res.Slug), res.SHA)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title (default derived from the slug)")
	cmd.Flags().StringVar(&difficulty, "difficulty", string(solution.Easy), "easy, medium or hard")
	cmd.Flags().StringVar(&excerpt, "excerpt", "", "short summary")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "comma separated tag ids")
	cmd.Flags().StringVarP(&file, "file", "f", "", "markdown body file, or - for stdin")
	return cmd
}

func newDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.service()
			if err != nil {
				return err
			}
			if _, err := svc.Delete(cmd.Context(), args[0]); err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", svc.Path(args[0]))
			return nil
		},
	}
}

func readBody(stdin io.Reader, file string) (string, error) {
	var (
		data []byte
		err  error
	)
	if file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}

// describe flattens validation failures into one readable error.
func describe(err error) error {
	fields := solution.FieldErrors(err)
	if len(fields) == 0 {
		return err
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return errors.New("invalid solution: " + strings.Join(parts, "; "))
}

// toTitle converts a hyphenated slug to a title-case string.
// e.g. "two-sum" -> "Two Sum"
func toTitle(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
