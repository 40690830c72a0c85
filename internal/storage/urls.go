package storage

import (
	"net/url"
	"strings"
)

// publicURL appends key to base, percent-encoding each path segment.
func publicURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

// keyFromPublicURL recovers the decoded key from a URL built by publicURL.
// When the base does not match (for example after the public host changed),
// the part after the first "/<bucket>/" segment is used instead.
func keyFromPublicURL(base, bucket, raw string) (string, bool) {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}

	prefix := strings.TrimRight(base, "/") + "/"
	var escaped string
	switch {
	case base != "" && strings.HasPrefix(raw, prefix):
		escaped = raw[len(prefix):]
	case bucket != "" && strings.Contains(raw, "/"+bucket+"/"):
		marker := "/" + bucket + "/"
		escaped = raw[strings.Index(raw, marker)+len(marker):]
	default:
		return "", false
	}

	key, err := url.PathUnescape(escaped)
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}
