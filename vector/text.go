package vector

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// errFragment truncates raw input for inclusion in error messages.
func errFragment(s string) string {
	const maxFragment = 32
	if len(s) > maxFragment {
		return s[:maxFragment] + "..."
	}
	return s
}

// ParseText parses the textual vector form "[x, y, z]". Elements are parsed
// with the host float parser; whitespace around brackets, commas, and numbers
// is ignored. An empty element list "[]" yields an empty vector.
func ParseText(s string) (*Vector, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &TextError{Fragment: errFragment(s), Reason: "doesn't start with '['"}
	}
	end := strings.IndexByte(trimmed, ']')
	if end < 0 {
		return nil, &TextError{Fragment: errFragment(s), Reason: "doesn't end with ']'"}
	}
	if rest := strings.TrimSpace(trimmed[end+1:]); rest != "" {
		return nil, &TextError{Fragment: errFragment(rest), Reason: "trailing garbage after ']'"}
	}

	body := strings.TrimSpace(trimmed[1:end])
	if body == "" {
		return New(nil), nil
	}

	parts := strings.Split(body, ",")
	if len(parts) > MaxDims {
		return nil, &TextError{Fragment: errFragment(s), Reason: fmt.Sprintf("more than %d elements", MaxDims)}
	}
	data := make([]float32, 0, len(parts))
	for _, part := range parts {
		tok := strings.TrimSpace(part)
		if len(tok) > maxNumberLen {
			return nil, &TextError{Fragment: errFragment(tok), Reason: "number too long"}
		}
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, &TextError{Fragment: errFragment(tok), Reason: "invalid number"}
		}
		data = append(data, float32(f))
	}
	return New(data), nil
}

// isIntegral reports whether f prints as a plain decimal integer. Negative
// and out-of-range values fall through to exponential form, mirroring the
// unsigned integer check of the canonical formatter.
func isIntegral(f float32) bool {
	f64 := float64(f)
	return f64 == math.Trunc(f64) && f64 >= 0 && f64 < math.MaxUint64
}

// FormatText renders v in canonical textual form: integral components as
// decimal integers, everything else in 6-digit exponential notation. The
// output round-trips through ParseText.
func FormatText(v *Vector) string {
	var sb strings.Builder
	sb.Grow(2 + len(v.data)*13)
	sb.WriteByte('[')
	for i, f := range v.data {
		if i > 0 {
			sb.WriteByte(',')
		}
		if isIntegral(f) {
			sb.WriteString(strconv.FormatUint(uint64(f), 10))
		} else {
			fmt.Fprintf(&sb, "%.6e", f)
		}
	}
	sb.WriteByte(']')
	return sb.String()
}

// String implements fmt.Stringer using the canonical textual form.
func (v *Vector) String() string {
	return FormatText(v)
}
