package share

import (
	"net/url"
	"strings"

	"github.com/Jetstb21/Icould--B-SATO-SHI/internal/domain/category"
)

// Query keys and fragment prefix used by share links.
const (
	CompareParam = "compare"
	ScoresParam  = "d"
	shortPrefix  = "/c/"
)

// BuildShareURL sets the compare query parameter on base. It returns "" when base
// is not a valid URL.
func BuildShareURL(base string, ids []string) string {
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set(CompareParam, strings.Join(NormalizeIDs(ids), ","))
	u.RawQuery = q.Encode()
	return u.String()
}

// query extracts query values from a full URL, a "?a=b" string or a bare "a=b" string.
func query(raw string) url.Values {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	} else if strings.Contains(raw, "://") {
		return url.Values{}
	}
	v, err := url.ParseQuery(raw)
	if err != nil {
		return url.Values{}
	}
	return v
}

// ReadSharedIDs reads the compare parameter from a URL or query string.
func ReadSharedIDs(raw string) []string {
	return ParseIDList(query(raw).Get(CompareParam))
}

// BuildShortLink returns origin + "#/c/<code>". It returns "" when origin is invalid.
func BuildShortLink(origin string, ids []string) string {
	u, err := url.Parse(origin)
	if err != nil {
		return ""
	}
	u.Path = "/"
	u.RawQuery = ""
	u.Fragment = shortPrefix + ToCompareCode(ids)
	return u.String()
}

// ReadCodeFromHash reads identifiers from a fragment. It accepts the short form
// "#/c/<code>" and the older "#id1,id2" form; a full URL may be passed as well.
func ReadCodeFromHash(raw string) []string {
	hash := strings.TrimSpace(raw)
	if i := strings.IndexByte(hash, '#'); i >= 0 {
		hash = hash[i+1:]
	} else if strings.Contains(hash, "://") {
		return []string{}
	}
	if code, ok := strings.CutPrefix(hash, shortPrefix); ok {
		return DecodeCompareCode(code)
	}
	return ParseIDList(hash)
}

// BuildScoreURL sets the score code query parameter on base.
func BuildScoreURL(base string, m category.ScoreMap) string {
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set(ScoresParam, EncodeScores(m))
	u.RawQuery = q.Encode()
	return u.String()
}

// ReadScores decodes the score code carried by a URL or query string.
func ReadScores(raw string) category.ScoreMap {
	return DecodeScores(query(raw).Get(ScoresParam))
}
