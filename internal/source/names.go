package source

import "golang.org/x/text/unicode/norm"

// NormalizeName brings an identifier to NFC so that visually equal names
// written with different code point sequences compare equal.
func NormalizeName(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}
