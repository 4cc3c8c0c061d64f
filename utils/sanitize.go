package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.UGCPolicy()

// Sanitize strips unsafe HTML from user-supplied text before it is stored.
// Display names, property names and referral names all pass through here.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
