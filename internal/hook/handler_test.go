package hook

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/slacklinehq/slackline/internal/state"
)

// postCall records one PostMessage invocation
type postCall struct {
	text     string
	threadTS string
}

// completeCall records one CompleteUpload invocation
type completeCall struct {
	fileID   string
	title    string
	threadTS string
}

// fakeChat implements ChatClient and state.RootPoster, recording every call
type fakeChat struct {
	posts     []postCall
	deleted   []string
	uploaded  map[string][]byte // upload URL → bytes
	completed []completeCall

	slots int // upload slots handed out

	failPost     bool
	failGetURL   bool
	failUpload   bool
	failComplete bool
	failDelete   bool
}

func newFakeChat() *fakeChat {
	return &fakeChat{uploaded: map[string][]byte{}}
}

func (f *fakeChat) PostMessage(_ context.Context, text, threadTS string) (string, error) {
	if f.failPost {
		return "", fmt.Errorf("post failed")
	}
	f.posts = append(f.posts, postCall{text: text, threadTS: threadTS})
	return fmt.Sprintf("1700000000.%06d", len(f.posts)), nil
}

func (f *fakeChat) DeleteFile(_ context.Context, fileID string) error {
	if f.failDelete {
		return fmt.Errorf("delete failed")
	}
	f.deleted = append(f.deleted, fileID)
	return nil
}

func (f *fakeChat) GetUploadURL(_ context.Context, filename string, length int) (string, string, error) {
	if f.failGetURL {
		return "", "", fmt.Errorf("slot request failed")
	}
	f.slots++
	return fmt.Sprintf("https://upload.local/%d", f.slots), fmt.Sprintf("F%d", f.slots), nil
}

func (f *fakeChat) UploadToURL(_ context.Context, uploadURL string, content []byte) error {
	if f.failUpload {
		return fmt.Errorf("upload failed")
	}
	f.uploaded[uploadURL] = content
	return nil
}

func (f *fakeChat) CompleteUpload(_ context.Context, fileID, title, threadTS string) error {
	if f.failComplete {
		return fmt.Errorf("finalize failed")
	}
	f.completed = append(f.completed, completeCall{fileID: fileID, title: title, threadTS: threadTS})
	return nil
}

// callCount is the total number of remote calls the fake saw
func (f *fakeChat) callCount() int {
	return len(f.posts) + len(f.deleted) + len(f.uploaded) + len(f.completed) + f.slots
}

// rootPosts returns the posts made outside any thread
func (f *fakeChat) rootPosts() []postCall {
	var roots []postCall
	for _, p := range f.posts {
		if p.threadTS == "" {
			roots = append(roots, p)
		}
	}
	return roots
}

func newTestHandler(t *testing.T) (*Handler, *fakeChat) {
	t.Helper()
	chat := newFakeChat()
	store := state.NewFileStore(filepath.Join(t.TempDir(), "threads.json"), 100)
	sessions := state.NewManager(store, chat, zerolog.Nop())
	h := New(Options{
		Chat:          chat,
		Sessions:      sessions,
		MaxMessageLen: 3000,
		Logger:        zerolog.Nop(),
	})
	h.now = func() time.Time {
		return time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	}
	return h, chat
}

func writeTranscript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestTruncate(t *testing.T) {
	t.Run("short text untouched", func(t *testing.T) {
		require.Equal(t, "hello", truncate("hello", 10))
	})

	t.Run("exactly max untouched", func(t *testing.T) {
		require.Equal(t, "12345", truncate("12345", 5))
	})

	t.Run("long text is max runes plus suffix", func(t *testing.T) {
		got := truncate(strings.Repeat("x", 100), 40)
		require.Equal(t, strings.Repeat("x", 40)+truncationSuffix, got)
		require.Len(t, []rune(got), 40+len([]rune(truncationSuffix)))
	})

	t.Run("multibyte text counts runes, not bytes", func(t *testing.T) {
		got := truncate(strings.Repeat("ü", 50), 10)
		require.Equal(t, strings.Repeat("ü", 10)+truncationSuffix, got)
	})
}
