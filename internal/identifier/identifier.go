// Package identifier canonicalizes publication identifiers (DOI, PubMed ID,
// WoS UID, Scopus ID) into comparable strings.
package identifier

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type is the kind of a publication identifier.
type Type string

const (
	TypeDOI        Type = "doi"
	TypePubMed     Type = "pubmed"
	TypeWoS        Type = "wos"
	TypeScopus     Type = "scopus"
	TypeORCIDOther Type = "orcid-other"
	TypeORCIDPMC   Type = "orcid-pmc"
)

// ValidTypes lists the supported identifier types.
var ValidTypes = []Type{TypeDOI, TypePubMed, TypeWoS, TypeScopus, TypeORCIDOther, TypeORCIDPMC}

// ParseType validates an identifier type name.
func ParseType(s string) (Type, error) {
	for _, t := range ValidTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid identifier type: %s (valid: %v)", s, ValidTypes)
}

// ErrUnsupportedValue is returned when a cell cannot be coerced into a
// single identifier token.
var ErrUnsupportedValue = errors.New("unsupported identifier value")

// doiPrefixes are removed from every position of a DOI, not only the start.
var doiPrefixes = strings.NewReplacer(
	"doi:", "",
	"https://doi.org/", "",
	"http://doi.org/", "",
)

// NormalizeDOI lowercases a DOI, strips the "doi:" and doi.org URL prefixes
// and trims surrounding whitespace. NormalizeDOI(NormalizeDOI(x)) == NormalizeDOI(x).
func NormalizeDOI(doi string) string {
	doi = strings.ToLower(doi)
	// Removing one prefix can splice together another ("hthttps://doi.org/tps://...").
	for {
		stripped := doiPrefixes.Replace(doi)
		if stripped == doi {
			break
		}
		doi = stripped
	}
	return strings.TrimSpace(doi)
}

// IsAbsent reports whether a stringified cell carries no identifier.
func IsAbsent(s string) bool {
	return s == "" || s == "[]"
}

// Normalize canonicalizes a raw cell value as an identifier of type t.
// The boolean is false when the value is absent (nil, NaN, "" or "[]").
// Values that cannot be reduced to a single token return ErrUnsupportedValue.
func Normalize(raw any, t Type) (string, bool, error) {
	s, ok, err := Stringify(raw)
	if err != nil || !ok {
		return "", false, err
	}
	if IsAbsent(s) {
		return "", false, nil
	}
	if t == TypeDOI {
		s = NormalizeDOI(s)
		if s == "" {
			return "", false, nil
		}
	}
	return s, true, nil
}

// Stringify converts a cell value into its textual form.
// Integral floats render without a fractional part so that spreadsheet-typed
// numeric identifiers compare equal to their textual form.
func Stringify(raw any) (string, bool, error) {
	switch v := raw.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	case fmt.Stringer:
		return v.String(), true, nil
	case bool:
		return strconv.FormatBool(v), true, nil
	case int:
		return strconv.Itoa(v), true, nil
	case int64:
		return strconv.FormatInt(v, 10), true, nil
	case int32:
		return strconv.FormatInt(int64(v), 10), true, nil
	case uint64:
		return strconv.FormatUint(v, 10), true, nil
	case float32:
		return formatFloat(float64(v))
	case float64:
		return formatFloat(v)
	case []string:
		return singleToken(len(v), func() any { return v[0] })
	case []any:
		return singleToken(len(v), func() any { return v[0] })
	default:
		return "", false, fmt.Errorf("%w: %T", ErrUnsupportedValue, raw)
	}
}

func formatFloat(f float64) (string, bool, error) {
	if math.IsNaN(f) {
		return "", false, nil
	}
	if math.IsInf(f, 0) {
		return "", false, fmt.Errorf("%w: %v", ErrUnsupportedValue, f)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e18 {
		return strconv.FormatInt(int64(f), 10), true, nil
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true, nil
}

// singleToken unwraps a list cell holding exactly one value.
// Empty lists are absent; multi-value cells are not split.
func singleToken(n int, first func() any) (string, bool, error) {
	switch n {
	case 0:
		return "", false, nil
	case 1:
		return Stringify(first())
	default:
		return "", false, fmt.Errorf("%w: list of %d values", ErrUnsupportedValue, n)
	}
}
