package dictionary

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// UserAgent is sent with download requests.
const UserAgent = "easydict-cli"

var httpClient = &http.Client{Timeout: 5 * time.Minute}

// FetchRaw downloads a tab-separated word list from url into dest, ready to
// be passed to Store.Fill. Gzip payloads are detected by their magic bytes
// and decompressed. dest is replaced only after a complete download.
func FetchRaw(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	body := bufio.NewReader(resp.Body)
	var src io.Reader = body
	if gzipped(body) {
		gz, err := gzip.NewReader(body)
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

var gzipMagic = []byte{0x1f, 0x8b}

func gzipped(body *bufio.Reader) bool {
	head, _ := body.Peek(len(gzipMagic))
	return bytes.Equal(head, gzipMagic)
}
