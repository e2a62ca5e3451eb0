package reporting

import (
	"fmt"
	"strings"

	"robo-advisor-lab/internal/domain"
)

// RenderCSV renders the month-end rows of report as CSV string.
// Undefined cells are left empty.
func RenderCSV(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("date,value,real_value,benchmark_value\n")

	// Rows
	for _, m := range r.Monthly {
		sb.WriteString(fmt.Sprintf("%s,%.2f,%s,%s\n",
			m.Date.Format(domain.DateLayout),
			m.Value,
			csvCell(m.RealValue),
			csvCell(m.BenchmarkValue),
		))
	}

	return sb.String()
}

func csvCell(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}
