// Package sqlgen renders Go values and operators into MySQL text fragments.
package sqlgen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// EscapeMarker delimits string-literal content inside a rendered query.
// The execution layer locates marker pairs and replaces their content with
// driver-escaped text before the query reaches the server. The builder
// itself never escapes; it only marks what needs escaping.
const EscapeMarker = "{esc}"

// ErrEncode is returned when a value has no safe SQL literal representation.
var ErrEncode = errors.New("value cannot be encoded as a SQL literal")

// Encode renders a Go value as a MySQL literal. Strings (and serialized
// composites) are quoted and wrapped in EscapeMarker pairs; nil becomes NULL,
// booleans TRUE/FALSE, and numbers keep their natural text form.
func Encode(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "NULL", nil
	case string:
		return markString(v), nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return encodeComposite(value)
	}
}

// encodeComposite serializes a non-scalar value to JSON and verifies the
// serialization round-trips to an equivalent document. Values that do not
// survive the round trip have no stable literal form and are rejected.
func encodeComposite(value any) (string, error) {
	first, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%w: %T is not serializable: %v", ErrEncode, value, err)
	}
	var decoded any
	if err := json.Unmarshal(first, &decoded); err != nil {
		return "", fmt.Errorf("%w: %T does not round-trip: %v", ErrEncode, value, err)
	}
	second, err := json.Marshal(decoded)
	if err != nil {
		return "", fmt.Errorf("%w: %T does not round-trip: %v", ErrEncode, value, err)
	}
	if !bytes.Equal(first, second) {
		return "", fmt.Errorf("%w: serialization of %T is not stable", ErrEncode, value)
	}
	return markString(string(first)), nil
}

func markString(s string) string {
	return "'" + EscapeMarker + s + EscapeMarker + "'"
}

// ResolveMarkers rewrites a rendered query for execution: every span wrapped
// in an EscapeMarker pair is replaced by escape(span) with the markers
// removed. Text outside marker pairs passes through untouched.
func ResolveMarkers(query string, escape func(string) string) string {
	parts := strings.Split(query, EscapeMarker)
	if len(parts) == 1 {
		return query
	}
	unbalanced := len(parts)%2 == 0
	var b strings.Builder
	for i, part := range parts {
		if i%2 == 1 && !(unbalanced && i == len(parts)-1) {
			b.WriteString(escape(part))
			continue
		}
		if unbalanced && i == len(parts)-1 {
			// Stray opening marker with no closer: keep the text verbatim.
			b.WriteString(EscapeMarker)
		}
		b.WriteString(part)
	}
	return b.String()
}
