package replay

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/status-im/rest-executor/models"
)

// Key returns the stable lookup key of a request: the hex SHA-256 of its
// method, full URL and payload. Both are keyed as they travel on the wire:
// the URL in its escaped form and the payload with every non-ASCII rune
// sent as '?'.
func Key(method models.Method, target, data string) string {
	h := sha256.New()
	h.Write([]byte(method.String()))
	h.Write([]byte{0})
	h.Write([]byte(wireURL(target)))
	h.Write([]byte{0})
	h.Write([]byte(wireData(data)))
	return hex.EncodeToString(h.Sum(nil))
}

// wireURL returns target as net/url renders it for the request line.
// Targets that do not parse are keyed verbatim.
func wireURL(target string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	return u.String()
}

func wireData(data string) string {
	return strings.Map(func(r rune) rune {
		if r > 0x7F {
			return '?'
		}
		return r
	}, data)
}
