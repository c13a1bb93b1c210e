package domain

import "strings"

// NormalizeID turns free text ("admin block ") into a location identifier ("ADMIN_BLOCK").
// The routing core expects identifiers already normalized; adapters call this on user input.
func NormalizeID(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), "_"))
}
