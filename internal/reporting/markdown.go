package reporting

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"controller-sizer/internal/domain"
	"controller-sizer/internal/idhash"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString(fmt.Sprintf("# %s\n\n", r.Title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Request
	sb.WriteString("## Request\n\n")
	sb.WriteString("| Setting | Value |\n")
	sb.WriteString("|---------|-------|\n")
	if r.Meta.RunID != "" {
		sb.WriteString(fmt.Sprintf("| Run ID | %s |\n", r.Meta.RunID))
	}
	if r.Meta.Fingerprint != "" {
		if short, err := idhash.ShortID(r.Meta.Fingerprint); err == nil {
			sb.WriteString(fmt.Sprintf("| Fingerprint | %s (`%s`) |\n", short, r.Meta.Fingerprint))
		} else {
			sb.WriteString(fmt.Sprintf("| Fingerprint | %s |\n", r.Meta.Fingerprint))
		}
	}
	sb.WriteString(fmt.Sprintf("| Base | %s |\n", r.Meta.Base))
	sb.WriteString(fmt.Sprintf("| Expansions | %s |\n", strings.Join(r.Meta.Expansions, ", ")))
	sb.WriteString(fmt.Sprintf("| Spare | %s%% |\n", FormatValue("", r.Meta.SparePercent)))
	sb.WriteString(fmt.Sprintf("| Auxiliary power | %t |\n", r.Meta.IncludeAux))
	prices := "price list"
	if r.Meta.UsedFallback {
		prices = "built-in defaults (price list unavailable)"
	}
	sb.WriteString(fmt.Sprintf("| Prices | %s |\n", prices))
	sb.WriteString("\n")

	// Demand
	if r.Demand != nil {
		sb.WriteString("## Demand\n\n")
		sb.WriteString("| Kind | Points |\n")
		sb.WriteString("|------|--------|\n")
		for _, k := range domain.DemandKinds {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", k, r.Demand.Get(k)))
		}
		sb.WriteString(fmt.Sprintf("| Total | %d |\n\n", r.Demand.Total()))

		if len(r.Bounds) > 0 {
			names := make([]string, 0, len(r.Bounds))
			for n := range r.Bounds {
				names = append(names, n)
			}
			slices.Sort(names)
			parts := make([]string, len(names))
			for i, n := range names {
				parts[i] = fmt.Sprintf("%s ≤ %d", n, r.Bounds[n])
			}
			sb.WriteString(fmt.Sprintf("Search bounds: %s. Enumerated %d, feasible %d.\n\n",
				strings.Join(parts, ", "), r.Enumerated, r.Feasible))
		}
	}

	// Results
	sb.WriteString("## Results\n\n")
	if len(r.Table.Rows) == 0 {
		sb.WriteString("No feasible configuration.\n\n")
	} else {
		writeTable(&sb, r.Table)
		sb.WriteString("\n")
	}

	// Bill of materials
	if len(r.Materials) > 0 {
		sb.WriteString("## Bill of Materials\n\n")
		sb.WriteString("| Module | Quantity |\n")
		sb.WriteString("|--------|----------|\n")
		for _, m := range r.Materials {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", m.Module, m.Quantity))
		}
		sb.WriteString("\n")
	}

	// Verification
	sb.WriteString("## Verification\n\n")
	switch {
	case r.Verification.Checked == 0:
		sb.WriteString("Nothing to verify.\n")
	case r.Verification.Passed:
		sb.WriteString(fmt.Sprintf("All %d configurations satisfy every capacity inequality and match catalog prices.\n", r.Verification.Checked))
	default:
		sb.WriteString(fmt.Sprintf("%d issues found:\n\n", len(r.Verification.Violations)))
		for _, v := range r.Verification.Violations {
			sb.WriteString(fmt.Sprintf("- %s\n", v))
		}
	}

	return sb.String()
}

func writeTable(sb *strings.Builder, t Table) {
	sb.WriteString("| " + strings.Join(t.Columns, " | ") + " |\n")
	sep := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		sep[i] = strings.Repeat("-", max(len(c), 3))
	}
	sb.WriteString("|" + strings.Join(sep, "|") + "|\n")
	for _, row := range t.Rows {
		sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}
}
