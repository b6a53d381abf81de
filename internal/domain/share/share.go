// Package share encodes score maps and comparison selections into compact, URL-safe codes.
//
// Both codes use base64url without padding. A score code wraps the RFC 8785 canonical JSON
// of the map so equal maps always produce equal codes. A compare code wraps a comma-joined
// list of at most MaxCompare identifiers. Decoding never fails loudly: malformed input
// yields an empty result.
package share

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"strings"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
	"github.com/gowebpki/jcs"
)

// MaxCompare caps how many profiles a comparison may hold.
const MaxCompare = 3

// maxIDLen bounds a single identifier inside a compare code.
const maxIDLen = 64

var decoders = []*base64.Encoding{
	base64.RawURLEncoding,
	base64.URLEncoding,
	base64.StdEncoding,
	base64.RawStdEncoding,
}

func decodeBase64(s string) ([]byte, bool) {
	for _, enc := range decoders {
		if b, err := enc.DecodeString(s); err == nil {
			return b, true
		}
	}
	return nil, false
}

// EncodeScores returns the score code for m. Entries outside the category set or the
// scale are left out. An empty map encodes to the code of "{}".
func EncodeScores(m category.ScoreMap) string {
	raw := make(map[string]float64, len(m))
	for c, v := range m {
		if category.CheckScore(c, v) == nil {
			raw[string(c)] = v
		}
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return ""
	}
	canon, err := jcs.Transform(b)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(canon)
}

// DecodeScores parses a score code. Any malformed input, unknown category or
// out-of-range value yields an empty map rather than a partial one.
func DecodeScores(code string) category.ScoreMap {
	code = strings.TrimSpace(code)
	if code == "" {
		return category.ScoreMap{}
	}
	b, ok := decodeBase64(code)
	if !ok {
		return category.ScoreMap{}
	}
	var parsed map[string]any
	if err := json.Unmarshal(b, &parsed); err != nil {
		return category.ScoreMap{}
	}
	raw := make(map[string]float64, len(parsed))
	for k, v := range parsed {
		f, ok := v.(float64)
		if !ok || math.IsNaN(f) {
			return category.ScoreMap{}
		}
		raw[k] = f
	}
	m, ok := category.FromRaw(raw)
	if !ok {
		return category.ScoreMap{}
	}
	return m
}

// validID reports whether s may appear in a compare code.
func validID(s string) bool {
	if s == "" || len(s) > maxIDLen {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// NormalizeIDs trims identifiers, drops empty, malformed and repeated ones, and caps
// the result at MaxCompare while keeping order.
func NormalizeIDs(ids []string) []string {
	return filterIDs(ids, nil)
}

func filterIDs(ids []string, keep func(string) bool) []string {
	out := make([]string, 0, MaxCompare)
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if !validID(id) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if keep != nil && !keep(id) {
			continue
		}
		out = append(out, id)
		if len(out) == MaxCompare {
			break
		}
	}
	return out
}

// ParseIDList splits a comma separated list and normalizes it.
func ParseIDList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return NormalizeIDs(strings.Split(s, ","))
}

// ToCompareCode encodes up to MaxCompare identifiers.
func ToCompareCode(ids []string) string {
	ids = NormalizeIDs(ids)
	if len(ids) == 0 {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(strings.Join(ids, ",")))
}

// DecodeCompareCode strictly decodes a base64 compare code.
func DecodeCompareCode(code string) []string {
	code = strings.TrimSpace(code)
	if code == "" {
		return []string{}
	}
	b, ok := decodeBase64(code)
	if !ok {
		return []string{}
	}
	s := string(b)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) != "" && !validID(strings.TrimSpace(part)) {
			return []string{}
		}
	}
	return ParseIDList(s)
}

// FromCompareCode decodes a pasted compare code. Besides the base64 form it accepts
// a plain comma separated list, which older links carried.
func FromCompareCode(code string) []string {
	if ids := DecodeCompareCode(code); len(ids) > 0 {
		return ids
	}
	return ParseIDList(code)
}

// ResolveIDs keeps the identifiers known to the caller, preserving order and capping
// the result at MaxCompare.
func ResolveIDs(ids []string, known func(id string) bool) []string {
	if known == nil {
		return []string{}
	}
	return filterIDs(ids, known)
}
