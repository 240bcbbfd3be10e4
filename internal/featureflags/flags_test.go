package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled(t *testing.T) {
	t.Setenv("FLAG_DISABLE_SEED", "Yes")
	t.Setenv("FLAG_SANITIZE_INPUTS", "0")

	assert.True(t, Enabled(DisableSeed))
	assert.True(t, Enabled("disable_seed"))
	assert.False(t, Enabled(SanitizeInputs))
	assert.False(t, Enabled(DisableWorkers))
}
