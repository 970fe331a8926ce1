// Package format renders query results as markdown, CSV, or terminal tables.
package format

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ekaya-inc/ekaya-askdb/pkg/models"
)

// NullText is shown for SQL NULL values.
const NullText = "NULL"

// Markdown renders the result as a GitHub-flavored markdown table for the transcript.
func Markdown(result *models.QueryResult) string {
	return newWriter(result).RenderMarkdown()
}

// CSV renders the result as CSV with a header row, the form handed to the explanation model.
func CSV(result *models.QueryResult) string {
	return newWriter(result).RenderCSV()
}

// Terminal renders a borderless box-drawing table for the CLI.
func Terminal(result *models.QueryResult) string {
	t := newWriter(result)
	t.SetStyle(table.StyleLight)
	t.Style().Format = table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	}
	t.Style().Options.DrawBorder = false
	t.SuppressTrailingSpaces()
	t.AppendFooter(table.Row{fmt.Sprintf("(%d rows)", result.RowCount())})
	return t.Render()
}

func newWriter(result *models.QueryResult) table.Writer {
	header := make(table.Row, len(result.Columns))
	for i, c := range result.Columns {
		header[i] = c.Name
	}

	rows := make([]table.Row, 0, result.RowCount())
	for _, values := range result.Values() {
		row := make(table.Row, len(values))
		for i, v := range values {
			row[i] = CellString(v)
		}
		rows = append(rows, row)
	}

	t := table.NewWriter()
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.Style().Format.Header = text.FormatDefault
	return t
}

// CellString formats a driver value for display.
func CellString(v any) string {
	switch val := v.(type) {
	case nil:
		return NullText
	case string:
		return val
	case []byte:
		return "0x" + hex.EncodeToString(val)
	case time.Time:
		if val.Location() == time.UTC && val.Nanosecond() == 0 {
			return val.Format(time.DateTime)
		}
		return val.Format(time.RFC3339Nano)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
