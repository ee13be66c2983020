package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Builtin(t *testing.T) {
	r := NewRegistry()

	p, err := r.Resolve("daisyui")
	require.NoError(t, err)
	assert.Equal(t, "daisyui", p.ID)

	p, err = r.Resolve("@tailwindcss/line-clamp")
	require.NoError(t, err)
	assert.NotEmpty(t, p.Deprecated)

	_, err = r.Resolve("@tailwindcss/nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown plugin "@tailwindcss/nope"`)
}

func TestRegistry_Extra(t *testing.T) {
	r := NewRegistry("tailwindcss-animate", "  ", "daisyui")

	assert.True(t, r.Has("tailwindcss-animate"))
	assert.False(t, r.Has(""))

	// Extra ids never shadow a built-in description.
	p, err := r.Resolve("daisyui")
	require.NoError(t, err)
	assert.Equal(t, "Component classes and named color themes", p.Description)
}

func TestRegistry_KnownSorted(t *testing.T) {
	known := NewRegistry("zz-plugin").Known()
	require.Len(t, known, 7)
	for i := 1; i < len(known); i++ {
		assert.Less(t, known[i-1].ID, known[i].ID)
	}
	assert.Equal(t, "zz-plugin", known[len(known)-1].ID)
}
