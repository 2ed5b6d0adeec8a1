package realtime

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hslPattern = regexp.MustCompile(`^hsl\(\d+, \d+%, \d+%\)$`)

func TestColorForDeterministic(t *testing.T) {
	id := "7f8b9c4e-1234-4abc-8def-9a8b7c6d5e4f"
	assert.Equal(t, ColorFor(id), ColorFor(id))
}

func TestColorForKnownValue(t *testing.T) {
	// hash("a") = 97: hue 97, saturation 70+17, lightness 55+7
	assert.Equal(t, "hsl(97, 87%, 62%)", ColorFor("a"))
}

func TestColorForFormat(t *testing.T) {
	ids := []string{"", "a", "user-1", "e58ed763-928c-4155-bee9-fdbaaadc15f3"}
	for _, id := range ids {
		assert.Regexp(t, hslPattern, ColorFor(id))
	}
}

func TestColorForDistinctUsers(t *testing.T) {
	// Not guaranteed in general, but these inputs hash apart
	assert.NotEqual(t, ColorFor("user-alice"), ColorFor("user-bob"))
}
