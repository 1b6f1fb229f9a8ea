package archiver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"capturebot/config"
)

var testCreatedAt = time.Date(2024, 3, 9, 14, 5, 7, 123000000, time.UTC)

const (
	testMessageID   = "1215000000000000001"
	testChannelName = "general"
	testBaseName    = "1215000000000000001_general_2024-03-09T14-05-07-123Z"
)

func newTestArchiver(t *testing.T, cdnHosts ...string) (*ArchiverService, string, string) {
	root := t.TempDir()
	mediaRoot := filepath.Join(root, "media")
	urlRoot := filepath.Join(root, "urls")

	if len(cdnHosts) == 0 {
		cdnHosts = []string{"cdn.discordapp.com", "media.discordapp.net"}
	}

	httpClient := &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
	service := NewArchiverService(httpClient, config.ArchiveConfig{
		MediaRoot:           mediaRoot,
		URLRoot:             urlRoot,
		CDNHosts:            cdnHosts,
		DownloadConcurrency: 4,
		DownloadTimeout:     5 * time.Second,
	})
	service.now = func() time.Time { return time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC) }

	return service, mediaRoot, urlRoot
}

func TestBaseFilename(t *testing.T) {
	assert.Equal(t, testBaseName, BaseFilename(testMessageID, testChannelName, testCreatedAt))
	assert.Equal(t,
		"1_a_b_c_2024-03-09T14-05-07-123Z",
		BaseFilename("1", "a/b:c", testCreatedAt.In(time.FixedZone("X", 3600))),
	)
}

func TestSanitizeChannelName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "general", expected: "general"},
		{name: "unicode is kept", input: "📸-photos", expected: "📸-photos"},
		{name: "separators", input: `a/b\c`, expected: "a_b_c"},
		{name: "reserved characters", input: `x<>:"|?*y`, expected: "x_______y"},
		{name: "control characters", input: "tab\there", expected: "tab_here"},
		{name: "dot-only names", input: "..", expected: "_"},
		{name: "empty", input: "", expected: "_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeChannelName(tt.input))
		})
	}
}

func TestArchiverService_ResolveTarget(t *testing.T) {
	service, mediaRoot, urlRoot := newTestArchiver(t)

	tests := []struct {
		name         string
		rawURL       string
		expectedKind ArchiveKind
		expectedPath string
	}{
		{
			name:         "CDN image keeps its extension and drops the query",
			rawURL:       "https://cdn.discordapp.com/attachments/1/2/image.png?x=1",
			expectedKind: ArchiveKindMedia,
			expectedPath: filepath.Join(mediaRoot, "general", testBaseName+".png"),
		},
		{
			name:         "Media proxy host is treated as CDN",
			rawURL:       "https://media.discordapp.net/attachments/1/2/clip.MP4",
			expectedKind: ArchiveKindMedia,
			expectedPath: filepath.Join(mediaRoot, "general", testBaseName+".MP4"),
		},
		{
			name:         "CDN file without extension defaults to txt",
			rawURL:       "https://cdn.discordapp.com/attachments/1/2/README",
			expectedKind: ArchiveKindMedia,
			expectedPath: filepath.Join(mediaRoot, "general", testBaseName+".txt"),
		},
		{
			name:         "External link becomes a markdown stub",
			rawURL:       "https://example.com/article.html",
			expectedKind: ArchiveKindLink,
			expectedPath: filepath.Join(urlRoot, "general", testBaseName+".md"),
		},
		{
			name:         "Non-URL reference without extension defaults to txt",
			rawURL:       "attachment",
			expectedKind: ArchiveKindMedia,
			expectedPath: filepath.Join(mediaRoot, "general", testBaseName+".txt"),
		},
		{
			name:         "Non-URL reference keeps its extension",
			rawURL:       "notes.pdf",
			expectedKind: ArchiveKindMedia,
			expectedPath: filepath.Join(mediaRoot, "general", testBaseName+".pdf"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := service.ResolveTarget(tt.rawURL, testChannelName, testMessageID, testCreatedAt)
			assert.Equal(t, tt.expectedKind, target.Kind)
			assert.Equal(t, tt.expectedPath, target.Path)
		})
	}
}

func TestArchiverService_Archive(t *testing.T) {
	defer goleak.VerifyNone(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/attachments/image.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte("png-bytes"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	service, mediaRoot, urlRoot := newTestArchiver(t, "127.0.0.1")
	ctx := context.Background()

	t.Run("Streams CDN media to disk", func(t *testing.T) {
		service.Archive(ctx, server.URL+"/attachments/image.png?ex=1", testChannelName, testMessageID, testCreatedAt)

		data, err := os.ReadFile(filepath.Join(mediaRoot, "general", testBaseName+".png"))
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(data))
	})

	t.Run("Archiving again overwrites the same file", func(t *testing.T) {
		service.Archive(ctx, server.URL+"/attachments/image.png", testChannelName, testMessageID, testCreatedAt)

		entries, err := os.ReadDir(filepath.Join(mediaRoot, "general"))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("Failed download leaves no file behind", func(t *testing.T) {
		service.Archive(ctx, server.URL+"/attachments/missing.gif", testChannelName, "999", testCreatedAt)

		entries, err := os.ReadDir(filepath.Join(mediaRoot, "general"))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("Writes a reference stub for external links", func(t *testing.T) {
		service.Archive(ctx, "https://example.com/post", testChannelName, testMessageID, testCreatedAt)

		data, err := os.ReadFile(filepath.Join(urlRoot, "general", testBaseName+".md"))
		require.NoError(t, err)
		content := string(data)
		assert.Contains(t, content, "https://example.com/post")
		assert.Contains(t, content, testMessageID)
		assert.Contains(t, content, "general")
		assert.Contains(t, content, "2024-03-09T14:05:07Z")
		assert.Contains(t, content, "2024-03-10T00:00:00Z")
		assert.Contains(t, content, "[Open link](https://example.com/post)")
	})

	t.Run("Non-URL reference is swallowed", func(t *testing.T) {
		assert.NotPanics(t, func() {
			service.Archive(ctx, "attachment", "other", "5", testCreatedAt)
		})
		_, err := os.Stat(filepath.Join(mediaRoot, "other", BaseFilename("5", "other", testCreatedAt)+".txt"))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestArchiverService_ArchiveAll(t *testing.T) {
	defer goleak.VerifyNone(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("clip"))
	}))
	defer server.Close()

	service, mediaRoot, urlRoot := newTestArchiver(t, "127.0.0.1")

	service.ArchiveAll(context.Background(), []string{
		server.URL + "/attachments/clip.mp4",
		"https://example.com",
	}, testChannelName, testMessageID, testCreatedAt)

	_, err := os.Stat(filepath.Join(mediaRoot, "general", testBaseName+".mp4"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(urlRoot, "general", testBaseName+".md"))
	assert.NoError(t, err)

	t.Run("Empty list is a no-op", func(t *testing.T) {
		service.ArchiveAll(context.Background(), nil, testChannelName, testMessageID, testCreatedAt)
	})
}
