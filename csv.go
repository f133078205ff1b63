package mintport

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatCSV renders rows as CSV text. Every cell is quoted; literal double
// quotes inside a cell are stripped rather than escaped, matching the lossy
// behavior downstream spreadsheet users already depend on. nil cells render
// empty, numbers render without exponent or trailing zeros. Rows join with
// \n and the output ends with exactly one \n. The header, if any, is just
// row zero.
func FormatCSV(rows [][]any) string {
	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(cellString(cell), `"`, ""))
			b.WriteByte('"')
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func cellString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
