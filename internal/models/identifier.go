package models

import (
	"fmt"
	"strings"
)

// NormalizeCode strips separators from a stock identifier and validates it
// as a 6-digit A-share code. Normalization is total and idempotent:
// normalizing an already-normalized code returns it unchanged.
func NormalizeCode(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	code := b.String()
	if len(code) != 6 {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, raw)
	}
	return code, nil
}

// NormalizeCodes normalizes a comma-separated or pre-split list of codes,
// preserving input order and dropping duplicates. Any invalid entry fails
// the whole list.
func NormalizeCodes(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			code, err := NormalizeCode(part)
			if err != nil {
				return nil, err
			}
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			out = append(out, code)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty identifier list", ErrInvalidIdentifier)
	}
	return out, nil
}

// MarketForCode returns the listing market inferred from the code prefix:
// Shanghai for 6xxxxx, Shenzhen otherwise.
func MarketForCode(code string) string {
	if strings.HasPrefix(code, "6") {
		return "SSE"
	}
	return "SZSE"
}
