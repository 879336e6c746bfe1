package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mr-tron/base58"

	"controller-sizer/internal/domain"
)

// Inputs is everything that determines the outcome of a solve or batch.
type Inputs struct {
	Kind         domain.RunKind
	Base         string
	Expansions   []string
	IncludeAux   bool
	SparePercent float64
	Rows         []domain.DemandRow // a single solve is one unnamed row
	Prices       map[string]float64
}

// ComputeFingerprint computes a deterministic fingerprint of in using SHA256.
// Formula: SHA256(kind|base|expansions|aux|spare|rows|prices), where
// expansions and prices are sorted by name and rows keep their order.
// Returns hex-encoded hash (64 characters).
func ComputeFingerprint(in Inputs) string {
	expansions := append([]string(nil), in.Expansions...)
	sort.Strings(expansions)

	rows := make([]string, 0, len(in.Rows))
	for _, r := range in.Rows {
		d := r.Demand
		rows = append(rows, fmt.Sprintf("%s:%d,%d,%d,%d,%d,%d", r.Name, d.BO, d.BI, d.UI, d.AI, d.AO, d.Pressure))
	}

	names := make([]string, 0, len(in.Prices))
	for name := range in.Prices {
		names = append(names, name)
	}
	sort.Strings(names)
	prices := make([]string, 0, len(names))
	for _, name := range names {
		prices = append(prices, name+"="+strconv.FormatFloat(in.Prices[name], 'f', -1, 64))
	}

	data := fmt.Sprintf("%s|%s|%s|%t|%s|%s|%s",
		in.Kind,
		in.Base,
		strings.Join(expansions, ","),
		in.IncludeAux,
		strconv.FormatFloat(in.SparePercent, 'f', -1, 64),
		strings.Join(rows, ";"),
		strings.Join(prices, ","),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ShortID encodes the first 8 bytes of a hex fingerprint in base58
// (Bitcoin alphabet), for display and log correlation.
func ShortID(fingerprint string) (string, error) {
	raw, err := hex.DecodeString(fingerprint)
	if err != nil {
		return "", fmt.Errorf("decode fingerprint: %w", err)
	}
	if len(raw) < 8 {
		return "", fmt.Errorf("decode fingerprint: %d bytes, need at least 8", len(raw))
	}
	return base58.Encode(raw[:8]), nil
}
