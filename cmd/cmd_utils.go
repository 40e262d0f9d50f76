package cmd

import "strings"

// joinList undoes the comma splitting of a string slice flag.
func joinList(values []string) string {
	return strings.Join(values, ",")
}
