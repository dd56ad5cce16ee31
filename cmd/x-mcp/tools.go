package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/alucardeht/x-mcp/internal/tools"
	"github.com/alucardeht/x-mcp/internal/tools/twitter"
)

func toolsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools and whether the allowlist enables them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := twitter.GetTools(nil, twitter.Options{})
			out := cmd.OutOrStdout()

			if asJSON {
				type entry struct {
					Name        string          `json:"name"`
					Description string          `json:"description"`
					Enabled     bool            `json:"enabled"`
					InputSchema json.RawMessage `json:"inputSchema"`
				}
				entries := make([]entry, 0, len(all))
				for _, t := range all {
					enabled, err := tools.Enabled(t.Name(), cfg.Tools.Enabled)
					if err != nil {
						return err
					}
					entries = append(entries, entry{t.Name(), t.Description(), enabled, t.Schema()})
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			fmt.Fprintln(out, color.CyanString("Tools"))
			for _, t := range all {
				enabled, err := tools.Enabled(t.Name(), cfg.Tools.Enabled)
				if err != nil {
					return err
				}
				mark := color.GreenString("✓")
				if !enabled {
					mark = color.RedString("✗")
				}
				fmt.Fprintf(out, "  %s %-16s %s\n", mark, t.Name(), t.Description())
				fmt.Fprintf(out, "      args: %s\n", color.YellowString(describeArgs(t.Schema())))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

// describeArgs renders a schema's properties as "name*, other" with
// required ones starred.
func describeArgs(schema json.RawMessage) string {
	var s struct {
		Properties map[string]json.RawMessage `json:"properties"`
		Required   []string                   `json:"required"`
	}
	if err := json.Unmarshal(schema, &s); err != nil {
		return "?"
	}

	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}

	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if required[names[i]] != required[names[j]] {
			return required[names[i]]
		}
		return names[i] < names[j]
	})

	for i, name := range names {
		if required[name] {
			names[i] = name + "*"
		}
	}
	return strings.Join(names, ", ")
}
