package archiver

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gammazero/workerpool"

	"capturebot/config"
	"capturebot/utils"
)

const (
	defaultExtension = ".txt"
	linkExtension    = ".md"
	maxExtensionLen  = 16
)

type ArchiveKind string

const (
	// ArchiveKindMedia streams the bytes behind the URL to the media root
	ArchiveKindMedia ArchiveKind = "media"
	// ArchiveKindLink writes a markdown reference stub to the URL root
	ArchiveKindLink ArchiveKind = "link"
)

// ArchiveTarget is where and how a single URL is archived
type ArchiveTarget struct {
	Kind ArchiveKind
	Path string
}

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

const linkStubTemplate = `# Archived link

- **URL:** %s
- **Message ID:** %s
- **Channel:** %s
- **Posted at:** %s
- **Archived at:** %s

[Open link](%s)
`

type ArchiverService struct {
	httpClient  *http.Client
	mediaRoot   string
	urlRoot     string
	cdnHosts    map[string]bool
	concurrency int
	now         func() time.Time
}

func NewArchiverService(httpClient *http.Client, cfg config.ArchiveConfig) *ArchiverService {
	utils.AssertInvariant(httpClient != nil, "http client cannot be nil")
	utils.AssertInvariant(cfg.DownloadConcurrency > 0, "download concurrency must be positive")

	cdnHosts := make(map[string]bool, len(cfg.CDNHosts))
	for _, host := range cfg.CDNHosts {
		cdnHosts[strings.ToLower(host)] = true
	}

	return &ArchiverService{
		httpClient:  httpClient,
		mediaRoot:   cfg.MediaRoot,
		urlRoot:     cfg.URLRoot,
		cdnHosts:    cdnHosts,
		concurrency: cfg.DownloadConcurrency,
		now:         time.Now,
	}
}

// ArchiveAll archives every URL of one message concurrently and waits for all of them.
// There is no ordering between URLs and no rollback when some of them fail.
func (s *ArchiverService) ArchiveAll(
	ctx context.Context,
	urls []string,
	channelName, messageID string,
	createdAt time.Time,
) {
	if len(urls) == 0 {
		return
	}

	log.Printf("📋 Starting to archive %d URL(s) for message %s", len(urls), messageID)

	pool := workerpool.New(min(s.concurrency, len(urls)))
	for _, rawURL := range urls {
		pool.Submit(func() {
			s.Archive(ctx, rawURL, channelName, messageID, createdAt)
		})
	}
	pool.StopWait()

	log.Printf("📋 Completed successfully - archived URLs for message %s", messageID)
}

// Archive stores one URL of a message. Errors are logged and swallowed.
func (s *ArchiverService) Archive(
	ctx context.Context,
	rawURL, channelName, messageID string,
	createdAt time.Time,
) {
	target := s.ResolveTarget(rawURL, channelName, messageID, createdAt)

	var err error
	switch target.Kind {
	case ArchiveKindLink:
		err = s.writeLinkStub(target.Path, rawURL, channelName, messageID, createdAt)
	default:
		err = s.download(ctx, target.Path, rawURL)
	}
	if err != nil {
		log.Printf("❌ Failed to archive %s for message %s: %v", rawURL, messageID, err)
		return
	}

	log.Printf("✅ Archived %s for message %s to %s", rawURL, messageID, target.Path)
}

// ResolveTarget decides how rawURL is archived and the file it is written to.
// CDN-hosted URLs and values that are not HTTP URLs are streamed as media; any other
// HTTP URL becomes a link stub.
func (s *ArchiverService) ResolveTarget(
	rawURL, channelName, messageID string,
	createdAt time.Time,
) ArchiveTarget {
	channelDir := SanitizeChannelName(channelName)
	base := BaseFilename(messageID, channelName, createdAt)

	if utils.IsHTTPURL(rawURL) && !s.isCDNHosted(rawURL) {
		return ArchiveTarget{
			Kind: ArchiveKindLink,
			Path: filepath.Join(s.urlRoot, channelDir, base+linkExtension),
		}
	}

	return ArchiveTarget{
		Kind: ArchiveKindMedia,
		Path: filepath.Join(s.mediaRoot, channelDir, base+mediaExtension(rawURL)),
	}
}

func (s *ArchiverService) isCDNHosted(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return s.cdnHosts[strings.ToLower(parsed.Hostname())]
}

func (s *ArchiverService) download(ctx context.Context, targetPath, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	return writeFileAtomically(targetPath, resp.Body)
}

func (s *ArchiverService) writeLinkStub(
	targetPath, rawURL, channelName, messageID string,
	createdAt time.Time,
) error {
	content := fmt.Sprintf(linkStubTemplate,
		rawURL,
		messageID,
		channelName,
		createdAt.UTC().Format(time.RFC3339),
		s.now().UTC().Format(time.RFC3339),
		rawURL,
	)
	return writeFileAtomically(targetPath, strings.NewReader(content))
}

// writeFileAtomically streams src into a temp file next to targetPath and renames it into place,
// overwriting any previous archive of the same name
func writeFileAtomically(targetPath string, src io.Reader) error {
	dir := filepath.Dir(targetPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".archive-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", targetPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", targetPath, err)
	}
	if err := os.Rename(tmpPath, targetPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move archive into place: %w", err)
	}

	return nil
}

// SanitizeChannelName replaces characters that are unsafe in file and directory names with '_'
func SanitizeChannelName(name string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(name, "_")
	if strings.Trim(sanitized, ". ") == "" {
		return "_"
	}
	return sanitized
}

// BaseFilename is {messageID}_{sanitized channel}_{ISO timestamp with ':' and '.' replaced by '-'}
func BaseFilename(messageID, channelName string, createdAt time.Time) string {
	timestamp := createdAt.UTC().Format("2006-01-02T15:04:05.000Z")
	timestamp = strings.NewReplacer(":", "-", ".", "-").Replace(timestamp)
	return fmt.Sprintf("%s_%s_%s", messageID, SanitizeChannelName(channelName), timestamp)
}

// mediaExtension returns the extension of the URL path, ignoring any query or fragment
func mediaExtension(rawURL string) string {
	p := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		p = parsed.Path
	}

	ext := path.Ext(p)
	if ext == "" || ext == "." || len(ext) > maxExtensionLen || unsafeFilenameChars.MatchString(ext) {
		return defaultExtension
	}
	return ext
}
