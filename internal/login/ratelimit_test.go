package login

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoginQuotaAllowsBurstThenBlocks(t *testing.T) {
	q := newLoginQuota(1, 3)
	host := "203.0.113.5"

	for i := 0; i < 3; i++ {
		assert.True(t, q.Allow(host), "attempt %d within burst should be allowed", i)
	}
	assert.False(t, q.Allow(host), "attempt beyond burst should be denied")
}

func TestLoginQuotaTracksHostsIndependently(t *testing.T) {
	q := newLoginQuota(1, 1)
	assert.True(t, q.Allow("198.51.100.1"))
	assert.True(t, q.Allow("198.51.100.2"))
	assert.False(t, q.Allow("198.51.100.1"))
}
