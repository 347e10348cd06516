package conditional

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTernary(t *testing.T) {
	assert.Equal(t, "a", Ternary(true, "a", "b"))
	assert.Equal(t, 2, Ternary(false, 1, 2))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "x", Coalesce("", "x", "y"))
	assert.Equal(t, 5000, Coalesce(0, 5000))
	assert.Equal(t, "", Coalesce[string]())
}
