package drive

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/context"
)

// ItfDrive downloads publicly shared Google Drive files by file ID.
type ItfDrive interface {
	DownloadFile(ctx context.Context, fileID string, destPath string) error
}

type driveClient struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*driveClient)

// WithBaseURL points the client at a different host, used in tests.
func WithBaseURL(baseURL string) Option {
	return func(d *driveClient) {
		d.baseURL = baseURL
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(d *driveClient) {
		d.httpClient = client
	}
}

func New(options ...Option) ItfDrive {
	client := &driveClient{
		baseURL: "https://drive.google.com/uc",
		httpClient: &http.Client{
			Timeout: 10 * time.Minute,
		},
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// DownloadFile streams the file into destPath. There is no checksum or retry:
// a truncated download is only detected later when the weights fail to load.
func (d *driveClient) DownloadFile(ctx context.Context, fileID string, destPath string) error {
	downloadURL := fmt.Sprintf("%s?%s", d.baseURL, url.Values{
		"export":  {"download"},
		"id":      {fileID},
		"confirm": {"t"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return err
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d downloading file %s", resp.StatusCode, fileID)
	}

	// An HTML body means Drive served an interstitial page instead of the
	// file, usually a bad or non-public file ID.
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html") {
		return fmt.Errorf("file %s is not directly downloadable", fileID)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", destPath, err)
	}

	return nil
}
