package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newFlowsCommand(ctx *commandContext) *cobra.Command {
	flowsCmd := &cobra.Command{
		Use:   "flows",
		Short: "List and run AI flows",
	}
	flowsCmd.AddCommand(newFlowsListCommand(ctx))
	flowsCmd.AddCommand(newFlowsSchemaCommand(ctx))
	flowsCmd.AddCommand(newFlowsRunCommand(ctx))
	return flowsCmd
}

func newFlowsListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show every registered flow",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.flowService()
			if err != nil {
				return err
			}
			specs := svc.Registry().List()

			if asJSON {
				type item struct {
					Name        string   `json:"name"`
					Description string   `json:"description"`
					Cacheable   bool     `json:"cacheable"`
					Tools       []string `json:"tools,omitempty"`
				}
				items := make([]item, 0, len(specs))
				for _, s := range specs {
					it := item{Name: s.Name, Description: s.Description, Cacheable: s.Cacheable}
					for _, t := range s.Tools {
						it.Tools = append(it.Tools, t.Name)
					}
					items = append(items, it)
				}
				return writeJSON(cmd, items)
			}

			rows := make([][]string, 0, len(specs))
			for _, s := range specs {
				tools := make([]string, 0, len(s.Tools))
				for _, t := range s.Tools {
					tools = append(tools, t.Name)
				}
				cached := "no"
				if s.Cacheable {
					cached = "yes"
				}
				rows = append(rows, []string{s.Name, cached, strings.Join(tools, ", "), s.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Flow", "Cached", "Tools", "Description"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newFlowsSchemaCommand(ctx *commandContext) *cobra.Command {
	var output bool
	cmd := &cobra.Command{
		Use:   "schema NAME",
		Short: "Print a flow's input (or output) JSON Schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.flowService()
			if err != nil {
				return err
			}
			spec, err := svc.Registry().Get(args[0])
			if err != nil {
				return err
			}
			schema := spec.InputSchema
			if output {
				schema = spec.OutputSchema
			}
			var buf bytes.Buffer
			if err := json.Indent(&buf, schema, "", "  "); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), buf.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&output, "output", false, "Print the output schema instead")
	return cmd
}

func newFlowsRunCommand(ctx *commandContext) *cobra.Command {
	var (
		inputFile string
		asJSON    bool
		style     string
	)
	cmd := &cobra.Command{
		Use:   "run NAME",
		Short: "Run a flow with JSON input from a file or stdin",
		Long: "Run a flow with JSON input read from --file, or from stdin when no file is given.\n" +
			"On a terminal, markdown reports are rendered; use --json for the raw result.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.flowService()
			if err != nil {
				return err
			}

			input, err := readInput(cmd, inputFile)
			if err != nil {
				return err
			}

			result, err := svc.Run(cmd.Context(), args[0], input)
			if err != nil {
				return err
			}

			if !asJSON && isTerminal(cmd.OutOrStdout()) {
				if md, ok := markdownField(result); ok {
					out, err := renderMarkdown(md, style)
					if err != nil {
						return err
					}
					fmt.Fprint(cmd.OutOrStdout(), out)
					return nil
				}
			}
			return writeJSON(cmd, result)
		},
	}
	cmd.Flags().StringVarP(&inputFile, "file", "f", "", "Input JSON file (default stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Always print the raw JSON result")
	cmd.Flags().StringVar(&style, "style", "auto", "Markdown style: auto, dark, light or notty")
	return cmd
}

func readInput(cmd *cobra.Command, path string) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return json.RawMessage(`{}`), nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("input is not valid JSON")
	}
	return data, nil
}
