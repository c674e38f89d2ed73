package speech

import (
	"bytes"
	"encoding/json"
)

// Extra carries provider-specific request fields that are not part of the
// canonical schema. Values stay as raw JSON until an adapter asks for them.
type Extra map[string]json.RawMessage

var jsonNull = []byte("null")

// Lookup decodes extra[key] into a T. A missing key, a JSON null, or a value
// of the wrong type all report false; malformed extra fields are treated as
// absent rather than as errors.
func Lookup[T any](extra Extra, key string) (T, bool) {
	var zero T
	raw, ok := extra[key]
	if !ok || len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return zero, false
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return zero, false
	}
	return value, true
}

// LookupPtr is Lookup returning nil for absent values, convenient for
// omitempty payload fields.
func LookupPtr[T any](extra Extra, key string) *T {
	value, ok := Lookup[T](extra, key)
	if !ok {
		return nil
	}
	return &value
}

// Has reports whether key is present with a non-null value.
func (e Extra) Has(key string) bool {
	raw, ok := e[key]
	return ok && len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

// Clone returns a copy that shares no map storage with e.
func (e Extra) Clone() Extra {
	if e == nil {
		return nil
	}
	out := make(Extra, len(e))
	for key, value := range e {
		out[key] = append(json.RawMessage(nil), value...)
	}
	return out
}
