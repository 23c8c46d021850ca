package hook

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse(t *testing.T) {
	ctx := context.Background()

	t.Run("no-op without conversation id", func(t *testing.T) {
		h, chat := newTestHandler(t)
		h.Response(ctx, Event{Text: "Hello"})
		assert.Zero(t, chat.callCount())
	})

	t.Run("no-op on empty text", func(t *testing.T) {
		h, chat := newTestHandler(t)
		h.Response(ctx, Event{ConversationID: "abc", Text: "   \n"})
		assert.Zero(t, chat.callCount())
	})

	t.Run("first response creates the thread titled with its text", func(t *testing.T) {
		h, chat := newTestHandler(t)
		h.Response(ctx, Event{ConversationID: "abc", Text: "Hello"})

		require.Len(t, chat.posts, 2)
		assert.Equal(t, ":thread: *Hello*", chat.posts[0].text)
		assert.Empty(t, chat.posts[0].threadTS)
		assert.Equal(t, "Hello", chat.posts[1].text)
		assert.Equal(t, "1700000000.000001", chat.posts[1].threadTS)
	})

	t.Run("second response reuses the thread", func(t *testing.T) {
		h, chat := newTestHandler(t)
		h.Response(ctx, Event{ConversationID: "abc", Text: "first message"})
		h.Response(ctx, Event{ConversationID: "abc", Text: "second message"})

		require.Len(t, chat.rootPosts(), 1)
		assert.Equal(t, ":thread: *first message*", chat.rootPosts()[0].text)

		// Both replies landed in the same thread
		assert.Equal(t, chat.posts[1].threadTS, chat.posts[2].threadTS)
	})

	t.Run("long text is truncated before posting", func(t *testing.T) {
		h, chat := newTestHandler(t)
		h.maxMessageLen = 20

		h.Response(ctx, Event{ConversationID: "abc", Text: strings.Repeat("a", 100)})

		reply := chat.posts[len(chat.posts)-1]
		assert.Equal(t, strings.Repeat("a", 20)+truncationSuffix, reply.text)
	})

	t.Run("title uses only the first line", func(t *testing.T) {
		h, chat := newTestHandler(t)
		h.Response(ctx, Event{ConversationID: "abc", Text: "first line\nsecond line"})

		assert.Equal(t, ":thread: *first line*", chat.rootPosts()[0].text)
	})

	t.Run("post failure leaves no thread recorded", func(t *testing.T) {
		h, chat := newTestHandler(t)
		chat.failPost = true

		h.Response(ctx, Event{ConversationID: "abc", Text: "Hello"})

		chat.failPost = false
		h.Response(ctx, Event{ConversationID: "abc", Text: "retry"})
		require.Len(t, chat.rootPosts(), 1)
		assert.Equal(t, ":thread: *retry*", chat.rootPosts()[0].text)
	})
}
