package colors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestColorize verifies ANSI codes are only applied while coloring is enabled.
func TestColorize(t *testing.T) {
	EnableColor()
	if !Enabled() {
		t.Skip("the console does not support ANSI escape codes")
	}
	assert.EqualValues(t, "\x1b[31mfoo\x1b[0m", Red("foo"))
	assert.EqualValues(t, "\x1b[1m\x1b[32m1\x1b[0m\x1b[0m", GreenBold(1))

	DisableColor()
	defer EnableColor()
	assert.False(t, Enabled())
	assert.EqualValues(t, "foo", Red("foo"))
	assert.EqualValues(t, "foo", Reset("foo"))
}
