package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/avatarctic/docflow/internal/core/domain/document"
	"github.com/avatarctic/docflow/internal/core/layout"
	"github.com/avatarctic/docflow/internal/core/ports"
	"github.com/avatarctic/docflow/internal/infrastructure/render"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [text-file]",
		Short: "Lay out a text file into a PDF or Word document",
		Long: `Lay out a plain text file the same way uploaded documents are laid out.
Blank lines separate paragraphs and form feeds start a new page.`,
		Example: `  # Write notes.pdf next to notes.txt
  docflowctl render notes.txt

  # Word output to a chosen path
  docflowctl render notes.txt --format word -o out.docx

  # Print the computed line positions as JSON
  docflowctl render notes.txt --layout`,
		Args: cobra.ExactArgs(1),
		RunE: runRender,
	}
	cmd.Flags().StringP("output", "o", "", "Output file path (default: input name with the format's extension)")
	cmd.Flags().StringP("format", "f", string(document.FormatPDF), "Output format: pdf or word")
	cmd.Flags().String("page-break", layout.DefaultPageBreak, "Page break marker in the input")
	cmd.Flags().Bool("layout", false, "Print the page layout as JSON instead of writing a file")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	marker, _ := cmd.Flags().GetString("page-break")
	printLayout, _ := cmd.Flags().GetBool("layout")

	f := document.Format(format)
	if !f.IsValid() {
		return fmt.Errorf("unknown format %q (want pdf or word)", format)
	}

	text, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	blocks := layout.BlocksFromText(string(text), marker)
	measurer := render.NewHelveticaMeasurer()

	if printLayout {
		pages, err := layout.Flow(blocks, layout.DefaultConfig(), measurer)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(pages)
	}

	var r ports.DocumentRenderer = render.NewWordRenderer()
	if f == document.FormatPDF {
		r = render.NewPDFRenderer(layout.DefaultConfig(), measurer)
	}
	out, err := r.Render(blocks)
	if err != nil {
		return fmt.Errorf("render %s: %w", f, err)
	}

	if outputPath == "" {
		outputPath = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "." + f.Extension()
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", outputPath, len(out))
	return nil
}
