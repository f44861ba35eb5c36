package broadcast

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackMentions_SingleChunkWhenEverythingFits(t *testing.T) {
	items := []string{"<@1>", "<@2>", "<@3>"}

	chunks := PackMentions(items, "Hey ", "!", 100)

	require.Len(t, chunks, 1)
	assert.Equal(t, "Hey <@1> <@2> <@3>!", chunks[0])
}

func TestPackMentions_OrderSurvivesRepacking(t *testing.T) {
	var items []string
	for i := 0; i < 25; i++ {
		items = append(items, fmt.Sprintf("<@%03d>", i))
	}

	chunks := PackMentions(items, "** ", " **", 40)
	require.Greater(t, len(chunks), 1)

	var got []string
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 40)
		body := strings.TrimSuffix(strings.TrimPrefix(c, "** "), " **")
		got = append(got, strings.Fields(body)...)
	}
	assert.Equal(t, items, got)
}

func TestPackMentions_Deterministic(t *testing.T) {
	items := []string{"<@a>", "<@bb>", "<@ccc>", "<@dddd>", "<@eeeee>"}

	first := PackMentions(items, "", "", 12)
	second := PackMentions(items, "", "", 12)

	assert.Equal(t, first, second)
}

func TestPackMentions_OversizedItemGetsOwnChunk(t *testing.T) {
	huge := strings.Repeat("x", 50)
	items := []string{"<@1>", huge, "<@2>"}

	chunks := PackMentions(items, "[", "]", 20)

	require.Len(t, chunks, 3)
	assert.Equal(t, "[<@1>]", chunks[0])
	assert.Equal(t, "["+huge+"]", chunks[1])
	assert.Greater(t, len(chunks[1]), 20)
	assert.Equal(t, "[<@2>]", chunks[2])
}

func TestPackMentions_EmptyInput(t *testing.T) {
	assert.Empty(t, PackMentions(nil, "pre", "post", 50))
}

func TestPackMentions_FortyRecipientsAtTransportBudget(t *testing.T) {
	// 40 mentions at 65 chars each renders around 2600 characters, which
	// cannot fit one 1900-char chunk.
	var items []string
	for i := 0; i < 40; i++ {
		items = append(items, fmt.Sprintf("<@%s%02d>", strings.Repeat("9", 60), i))
	}

	chunks := PackMentions(items, "", "", 1900)

	require.GreaterOrEqual(t, len(chunks), 2)
	total := 0
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 1900)
		total += len(strings.Fields(c))
	}
	assert.Equal(t, 40, total)
}
