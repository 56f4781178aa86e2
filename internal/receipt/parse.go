package receipt

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gastoscl/rendiciones/internal/client"
	"github.com/gastoscl/rendiciones/internal/expense"
)

// Chilean receipts write amounts with dot thousand separators and no decimal
// part ($12.345), dates as dd/mm/yyyy or dd-mm-yyyy, and tax IDs as RUTs.
var (
	amountPattern = regexp.MustCompile(`\$?\s*(\d{1,3}(?:\.\d{3})+|\d{4,})`)
	datePattern   = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`)
	rutPattern    = regexp.MustCompile(`\b(\d{1,2}\.?\d{3}\.?\d{3}-?[\dkK])\b`)
)

// ParseText turns raw OCR text into advisory hints. The largest amount on the
// receipt is suggested as the total, which is what it usually is.
func ParseText(text string) *expense.OCRData {
	hints := &expense.OCRData{}

	if amount, ok := extractLargestAmount(text); ok {
		hints.SuggestedAmount = &amount
	}
	hints.SuggestedDate = extractDate(text)
	hints.SuggestedRUTs = extractRUTs(text)

	switch {
	case hints.SuggestedAmount != nil && hints.SuggestedDate != "":
		hints.Confidence = "high"
	case hints.SuggestedAmount != nil || hints.SuggestedDate != "" || len(hints.SuggestedRUTs) > 0:
		hints.Confidence = "medium"
	default:
		hints.Confidence = "low"
	}
	return hints
}

func extractLargestAmount(text string) (float64, bool) {
	matches := amountPattern.FindAllStringSubmatch(text, -1)
	var largest float64
	found := false
	for _, m := range matches {
		raw := strings.ReplaceAll(m[1], ".", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if v > largest {
			largest = v
			found = true
		}
	}
	return largest, found
}

// extractDate returns the first date found, normalized to YYYY-MM-DD.
func extractDate(text string) string {
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return ""
	}
	return m[3] + "-" + pad2(month) + "-" + pad2(day)
}

// extractRUTs returns the valid RUTs on the receipt, formatted and deduped.
// Check-digit failures are dropped silently; OCR misreads digits all the
// time.
func extractRUTs(text string) []string {
	matches := rutPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]struct{})
	var ruts []string
	for _, m := range matches {
		if client.ValidateRUT(m[1]) != nil {
			continue
		}
		formatted := client.FormatRUT(m[1])
		if _, dup := seen[formatted]; dup {
			continue
		}
		seen[formatted] = struct{}{}
		ruts = append(ruts, formatted)
	}
	return ruts
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
