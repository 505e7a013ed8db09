package statsd

import (
	"strings"
)

var keyReplacer = strings.NewReplacer(".", "_", ":", "_", "|", "_", "@", "_", " ", "_", "\n", "_")

// HostKey makes h usable as one statsd key segment.
func HostKey(h string) string {
	return strings.Replace(strings.Replace(h, ".", "_", -1), ":", "_", -1)
}

// SafeKey makes an arbitrary name usable as one statsd key segment by
// replacing separators and protocol characters.
func SafeKey(s string) string {
	return keyReplacer.Replace(s)
}
