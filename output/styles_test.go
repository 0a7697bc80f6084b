package output

import (
	"bytes"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestStyleApply(t *testing.T) {
	assert.Equal(t, "plain", Style{}.Apply("plain"))
	assert.True(t, Style{}.Empty())

	styled := Style{Prefix: "\x1b[4m", Suffix: "\x1b[0m"}
	assert.False(t, styled.Empty())
	assert.Equal(t, "\x1b[4mtext\x1b[0m", styled.Apply("text"))
}

func TestStylesDisabled(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	styles := NewStyles(&bytes.Buffer{})
	assert.False(t, styles.Enabled())
	assert.Equal(t, "", styles.Reset())
	assert.True(t, styles.Underline().Empty())
	assert.True(t, styles.Stripe().Empty())
	assert.True(t, styles.MissingAnnotation().Empty())
	assert.True(t, styles.Gap().Empty())
}
