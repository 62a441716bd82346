package itinerary

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gangwonlab/tour-concierge/internal/types"
)

//go:embed data/packages.json
var packagesJSON []byte

// Packages returns the pre-built package templates. The embedded data is
// decoded once per call; the slice is small and callers keep the copies.
func Packages() ([]types.PackageTemplate, error) {
	var packages []types.PackageTemplate
	if err := json.Unmarshal(packagesJSON, &packages); err != nil {
		return nil, fmt.Errorf("decoding embedded packages: %w", err)
	}
	return packages, nil
}

// RenderPackageText renders one package as the plain-text schedule users
// download.
func RenderPackageText(pkg types.PackageTemplate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", pkg.Name)
	fmt.Fprintf(&b, "**기간**: %s | **인원**: %d명\n\n", pkg.Duration, pkg.GroupSize)
	fmt.Fprintf(&b, "**총 비용**: %s원 (1인당 %s원)\n\n", formatWon(pkg.TotalCost), formatWon(pkg.CostPerPerson))

	for _, day := range pkg.Itinerary {
		fmt.Fprintf(&b, "\n### Day %d\n\n", day.Day)
		for _, item := range day.Schedule {
			costText := "무료"
			if item.Cost > 0 {
				costText = formatWon(item.Cost) + "원"
			}
			notesText := ""
			if item.Notes != "" {
				notesText = fmt.Sprintf(" (%s)", item.Notes)
			}
			fmt.Fprintf(&b, "- **%s** | %s - %s%s\n", item.Time, item.Activity, costText, notesText)
		}
	}

	fmt.Fprintf(&b, "\n\n**포함 사항**: %s\n", strings.Join(pkg.Included, ", "))
	fmt.Fprintf(&b, "**불포함 사항**: %s\n", strings.Join(pkg.Excluded, ", "))
	return b.String()
}

func formatWon(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
