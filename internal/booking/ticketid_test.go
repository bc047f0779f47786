package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTicketID(t *testing.T) {
	seen := map[string]bool{}
	for range 200 {
		id := NewTicketID(42)
		assert.Regexp(t, `^TKT-42-[1-9]\d{5}$`, id)
		seen[id] = true
	}
	// 200 draws from 900000 suffixes almost never collide more than a few times.
	assert.Greater(t, len(seen), 190)
}
