package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestampedLines(t *testing.T) {
	raw := "[00:00:05] Alice: Welcome everyone.\n[00:00:12] Bob: Thanks for having me.\n"
	segs := Parse(raw)

	require.Len(t, segs, 2)
	assert.Equal(t, "seg-001", segs[0].ID)
	assert.Equal(t, "Alice", segs[0].Speaker)
	assert.Equal(t, 5.0, segs[0].Start)
	assert.Equal(t, "Welcome everyone.", segs[0].Text)

	assert.Equal(t, 12.0, segs[1].Start)
	assert.Equal(t, 12.0, segs[0].End) // closed at next segment's start
}

func TestParseMinuteSecondTimestamps(t *testing.T) {
	segs := Parse("[12:05] Carol: Motion carries.")
	require.Len(t, segs, 1)
	assert.Equal(t, 12*60+5.0, segs[0].Start)
	assert.Equal(t, "Carol", segs[0].Speaker)
}

func TestParseSpeakerOnlyLines(t *testing.T) {
	segs := Parse("Alice: First point.\nBob: Second point.")
	require.Len(t, segs, 2)
	assert.Equal(t, "Alice", segs[0].Speaker)
	assert.Equal(t, "Bob", segs[1].Speaker)
	assert.Less(t, segs[0].Start, segs[1].Start)
}

func TestParsePlainLines(t *testing.T) {
	segs := Parse("Just some narration.\n\nAnother line.")
	require.Len(t, segs, 2)
	assert.Empty(t, segs[0].Speaker)
	assert.Equal(t, "Just some narration.", segs[0].Text)
}

func TestParseKeepsOrderingMonotonic(t *testing.T) {
	// an out-of-order timestamp is clamped forward, never backwards
	segs := Parse("[00:30] Alice: Later.\n[00:10] Bob: Earlier on paper.")
	require.Len(t, segs, 2)
	assert.GreaterOrEqual(t, segs[1].Start, segs[0].Start)
}

func TestParseEmptyInput(t *testing.T) {
	assert.Empty(t, Parse(""))
	assert.Empty(t, Parse("\n  \n"))
}

func TestFlattenRoundTrip(t *testing.T) {
	segs := Parse("[00:05] Alice: Hello.\n[00:10] Bob: Hi.")
	text := Flatten(segs)
	assert.Contains(t, text, "Alice: Hello.")
	assert.Contains(t, text, "Bob: Hi.")
}
