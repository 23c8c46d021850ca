package hook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleFromTranscript(t *testing.T) {
	t.Run("extracts the first user query", func(t *testing.T) {
		path := writeTranscript(t, "preamble\n<user_query>Fix the build</user_query>\nassistant: ok")
		title, ok := titleFromTranscript(path)
		require.True(t, ok)
		assert.Equal(t, "Fix the build", title)
	})

	t.Run("uses only the first line of the query", func(t *testing.T) {
		path := writeTranscript(t, "<user_query>Fix the build\nand also the tests</user_query>")
		title, ok := titleFromTranscript(path)
		require.True(t, ok)
		assert.Equal(t, "Fix the build", title)
	})

	t.Run("caps long titles", func(t *testing.T) {
		path := writeTranscript(t, "<user_query>"+strings.Repeat("y", 300)+"</user_query>")
		title, ok := titleFromTranscript(path)
		require.True(t, ok)
		assert.Len(t, []rune(title), titleMaxLen)
		assert.True(t, strings.HasSuffix(title, "..."))
	})

	t.Run("no query tag", func(t *testing.T) {
		path := writeTranscript(t, "just some text")
		_, ok := titleFromTranscript(path)
		assert.False(t, ok)
	})

	t.Run("unterminated query tag", func(t *testing.T) {
		path := writeTranscript(t, "<user_query>never closed")
		_, ok := titleFromTranscript(path)
		assert.False(t, ok)
	})

	t.Run("missing file", func(t *testing.T) {
		_, ok := titleFromTranscript("/does/not/exist")
		assert.False(t, ok)
	})

	t.Run("empty path", func(t *testing.T) {
		_, ok := titleFromTranscript("")
		assert.False(t, ok)
	})
}

func TestTitleFromText(t *testing.T) {
	assert.Equal(t, "hello", titleFromText("hello"))
	assert.Equal(t, "first", titleFromText("  first\nsecond  "))

	long := titleFromText(strings.Repeat("z", 200))
	assert.Len(t, []rune(long), titleMaxLen)
}
