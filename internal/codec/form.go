// Package codec implements the two wire formats the API speaks: decoding
// application/x-www-form-urlencoded request bodies and encoding ad hoc JSON
// response bodies.
package codec

import (
	"net/url"
	"strings"
)

// Form holds decoded form fields. Keys are compared case-insensitively; when
// a key repeats, the last occurrence wins.
type Form map[string]string

// ParseForm decodes a form-encoded body: pairs split on '&', each pair split
// on the first '=', both sides percent-decoded. A pair without '=' becomes a
// key with an empty value. Values that fail percent-decoding are kept as-is
// rather than dropped.
func ParseForm(body string) Form {
	form := make(Form)
	for _, pair := range strings.Split(body, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = unescape(key)
		value = unescape(value)
		form[strings.ToLower(key)] = value
	}
	return form
}

// Get returns the value for a key, empty string if absent.
func (f Form) Get(key string) string {
	return f[strings.ToLower(key)]
}

// Has reports whether the key was present in the body, even with an empty value.
func (f Form) Has(key string) bool {
	_, ok := f[strings.ToLower(key)]
	return ok
}

func unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
