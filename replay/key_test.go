package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/status-im/rest-executor/models"
)

func TestKey(t *testing.T) {
	base := Key(models.MethodGet, "https://x.test/foo", "")

	assert.Len(t, base, 64)
	assert.Equal(t, base, Key(models.MethodGet, "https://x.test/foo", ""))

	assert.NotEqual(t, base, Key(models.MethodPost, "https://x.test/foo", ""))
	assert.NotEqual(t, base, Key(models.MethodGet, "https://x.test/bar", ""))
	assert.NotEqual(t, base, Key(models.MethodGet, "https://x.test/foo", "{}"))
}

func TestKey_FieldBoundaries(t *testing.T) {
	assert.NotEqual(t,
		Key(models.MethodGet, "https://x.test/a", "b"),
		Key(models.MethodGet, "https://x.test/ab", ""))
}

func TestKey_PayloadAsSentOnTheWire(t *testing.T) {
	assert.Equal(t,
		Key(models.MethodPost, "https://x.test/issue", `{"s":"héllo"}`),
		Key(models.MethodPost, "https://x.test/issue", `{"s":"h?llo"}`))
}

func TestKey_URLAsSentOnTheWire(t *testing.T) {
	assert.Equal(t,
		Key(models.MethodGet, "https://x.test/my issue", ""),
		Key(models.MethodGet, "https://x.test/my%20issue", ""))
	assert.Equal(t,
		Key(models.MethodGet, "https://x.test/a b?q=c d", ""),
		Key(models.MethodGet, "https://x.test/a%20b?q=c d", ""))
}
