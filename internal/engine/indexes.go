package engine

import (
	"fmt"
	"strings"

	"github.com/marketlens/ashare/internal/models"
)

// indexTable maps the supported canonical index codes to their metadata.
var indexTable = map[string]models.IndexInfo{
	"000903": {Code: "000903", Name: "中证100", Description: "CSI 100: the 100 largest, most liquid A-shares", Market: "SSE"},
	"000904": {Code: "000904", Name: "中证200", Description: "CSI 200: mid-cap A-shares ranked 101-300 by size", Market: "SSE"},
	"000300": {Code: "000300", Name: "沪深300", Description: "CSI 300: the 300 largest A-shares across both exchanges", Market: "SSE"},
	"000905": {Code: "000905", Name: "中证500", Description: "CSI 500: mid-small caps outside the CSI 300", Market: "SSE"},
}

// indexAliases maps accepted spellings to canonical codes. Lookups are
// case-insensitive.
var indexAliases = map[string]string{
	"csi100": "000903",
	"中证100": "000903",
	"csi200": "000904",
	"中证200": "000904",
	"csi300": "000300",
	"沪深300": "000300",
	"hs300":  "000300",
	"csi500": "000905",
	"中证500": "000905",
	"zz500":  "000905",
}

// ResolveIndex maps an alias or canonical code to index metadata.
// Unknown aliases return ErrUnknownIndex.
func ResolveIndex(alias string) (models.IndexInfo, error) {
	key := strings.ToLower(strings.TrimSpace(alias))
	if code, ok := indexAliases[key]; ok {
		return indexTable[code], nil
	}
	if info, ok := indexTable[key]; ok {
		return info, nil
	}
	return models.IndexInfo{}, fmt.Errorf("%w: %q", models.ErrUnknownIndex, alias)
}

// SupportedIndexes lists the canonical codes the engine can analyze.
func SupportedIndexes() []models.IndexInfo {
	out := make([]models.IndexInfo, 0, len(indexTable))
	for _, code := range []string{"000903", "000904", "000300", "000905"} {
		out = append(out, indexTable[code])
	}
	return out
}
