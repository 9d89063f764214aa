package table

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// Field is one labelled value of a key/value table.
type Field struct {
	Key   string
	Value string
}

// Format returns the rows padded according to the widest entry in each column.
// Columns are separated by two spaces and the last cell of a row is not padded.
func Format(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	widths := make([]int, colCount)
	for _, row := range rows {
		for c, cell := range row {
			if w := cellWidth(cell); w > widths[c] {
				widths[c] = w
			}
		}
	}
	out := make([]string, len(rows))
	for i, row := range rows {
		var b strings.Builder
		for c, cell := range row {
			if c > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if c < len(row)-1 {
				writeSpaces(&b, widths[c]-cellWidth(cell))
			}
		}
		out[i] = b.String()
	}
	return out
}

// Line is one rendered row of a key/value table. Key is empty on
// continuation lines of a wrapped value.
type Line struct {
	Key   string
	Value string
}

// KeyValue lays fields out in two columns within width. Keys are padded to
// the widest key and values are word wrapped into the remaining space, with
// words longer than the column broken hard.
func KeyValue(fields []Field, width int) []Line {
	if len(fields) == 0 {
		return nil
	}
	keyWidth := 0
	for _, f := range fields {
		if w := cellWidth(f.Key); w > keyWidth {
			keyWidth = w
		}
	}
	valueWidth := width - keyWidth - 2
	var rows [][]string
	for _, f := range fields {
		chunks := []string{f.Value}
		if valueWidth > 0 && cellWidth(f.Value) > valueWidth {
			wrapped := wrap.String(wordwrap.String(f.Value, valueWidth), valueWidth)
			chunks = strings.Split(wrapped, "\n")
		}
		for i, chunk := range chunks {
			if i == 0 {
				rows = append(rows, []string{f.Key, chunk})
				continue
			}
			rows = append(rows, []string{"", strings.TrimLeft(chunk, " ")})
		}
	}
	formatted := Format(rows)
	lines := make([]Line, len(rows))
	for i, row := range rows {
		value := row[1]
		lines[i] = Line{Key: formatted[i][:len(formatted[i])-len(value)], Value: value}
	}
	return lines
}

func cellWidth(text string) int {
	return lipgloss.Width(text)
}

func writeSpaces(b *strings.Builder, count int) {
	if count <= 0 {
		return
	}
	b.WriteString(strings.Repeat(" ", count))
}
