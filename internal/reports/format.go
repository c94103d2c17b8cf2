package reports

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Render writes results to w in the given format.
func Render(w io.Writer, format string, results []*Result) error {
	switch format {
	case FormatText, "":
		return renderText(w, results)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func renderText(w io.Writer, results []*Result) error {
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s\n", res.Title)
		fmt.Fprintf(w, "%s\n", strings.Repeat("=", len([]rune(res.Title))))

		if len(res.Rows) == 0 {
			fmt.Fprintln(w, "(no rows)")
			continue
		}

		table := tablewriter.NewWriter(w)
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetHeader(res.Columns)
		for _, row := range res.Rows {
			cells := make([]string, len(row))
			for j, v := range row {
				cells[j] = FormatValue(v)
			}
			table.Append(cells)
		}
		table.Render()
		fmt.Fprintf(w, "(%d row%s)\n", len(res.Rows), plural(len(res.Rows)))
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// FormatValue renders a report cell; floats get two decimals and missing
// values render as NULL.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	case *float64:
		if x == nil {
			return "NULL"
		}
		return strconv.FormatFloat(*x, 'f', 2, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
