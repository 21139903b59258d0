package deploy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	specs := Generate("web", 3, 4, Defaults{ResourcePool: "pool", PostScript: "hook.sh"})

	require.Len(t, specs, 4)
	assert.Equal(t, "web-3", specs[0].Name)
	assert.Equal(t, "web-6", specs[3].Name)
	for _, s := range specs {
		assert.Equal(t, "pool", s.ResourcePool)
		assert.Equal(t, "hook.sh", s.PostScript)
	}
}

func TestGenerate_SortsLexically(t *testing.T) {
	t.Parallel()

	specs := Generate("web", 8, 5, Defaults{})

	// Plain numbering sorts lexically, so web-10..web-12 precede web-8.
	names := make([]string, 0, len(specs))
	for _, s := range specs {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"web-10", "web-11", "web-12", "web-8", "web-9"}, names)
}

func TestGenerate_SingleUnit(t *testing.T) {
	t.Parallel()

	specs := Generate("db", 1, 1, Defaults{MAC: "00:50:56:00:00:01"})

	require.Len(t, specs, 1)
	assert.Equal(t, "db-1", specs[0].Name)
	assert.Equal(t, "00:50:56:00:00:01", specs[0].MAC)
}
