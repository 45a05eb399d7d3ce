package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

const DefaultOrderNumberTemplate = "ORD-{YYYY}{MM}{DD}-{SEQ4}"

// DayKey is the bucket a per-day order sequence is counted in.
func DayKey(t time.Time) string {
	return t.Format("20060102")
}

// FormatOrderNumber renders template for an order placed at placedAt with
// the given per-day sequence. It has no side effects.
func FormatOrderNumber(template string, placedAt time.Time, seq int64) (string, error) {
	if template == "" {
		return "", fmt.Errorf("order number template is empty")
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid order sequence: %d", seq)
	}

	out := template
	out = strings.ReplaceAll(out, "{YYYY}", placedAt.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", placedAt.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", placedAt.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", placedAt.Format("02"))
	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("unresolved token in order number format: %s", out)
	}
	return out, nil
}
