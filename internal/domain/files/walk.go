package files

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/saintfish/chardet"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/shared/types"
)

// MaxPushFileSize bounds a single pushed file; larger files are skipped
const MaxPushFileSize = 1 << 20

// Walk visits every file and directory under dir, depth first, in path order
func (c *Client) Walk(ctx context.Context, ref types.SessionRef, dir string, fn func(types.FileEntry) error) error {
	entries, err := c.List(ctx, ref, dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := fn(entry); err != nil {
			return err
		}
		if entry.IsDir {
			if err := c.Walk(ctx, ref, entry.Path, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Find returns the files whose workspace path matches a doublestar pattern,
// e.g. "**/*.py". Patterns are matched without the leading slash.
func (c *Client) Find(ctx context.Context, ref types.SessionRef, pattern string) ([]types.FileEntry, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	matches := []types.FileEntry{}
	err := c.Walk(ctx, ref, "/", func(entry types.FileEntry) error {
		if entry.IsDir {
			return nil
		}
		if ok, _ := doublestar.Match(pattern, strings.TrimPrefix(entry.Path, "/")); ok {
			matches = append(matches, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// PushOptions controls Push
type PushOptions struct {
	// Exclude holds doublestar patterns relative to the local directory
	Exclude []string
}

// PushResult lists what Push wrote and what it skipped, with reasons
type PushResult struct {
	Written []string
	Skipped map[string]string
}

// Push uploads the text files under localDir to remoteDir. Binary files,
// non UTF-8 files and files over MaxPushFileSize are skipped.
func (c *Client) Push(ctx context.Context, ref types.SessionRef, localDir, remoteDir string, opts PushOptions) (PushResult, error) {
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return PushResult{}, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	type pending struct {
		rel     string
		content string
	}
	var (
		mu      sync.Mutex
		uploads []pending
		result  = PushResult{Written: []string{}, Skipped: map[string]string{}}
	)
	skip := func(rel, reason string) {
		mu.Lock()
		result.Skipped[rel] = reason
		mu.Unlock()
	}

	// fastwalk calls fn from several goroutines
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, localDir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, err := filepath.Rel(localDir, p)
		if err != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if excluded(opts.Exclude, rel) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			skip(rel, "excluded")
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > MaxPushFileSize {
			skip(rel, "too large")
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if reason := textReason(data); reason != "" {
			skip(rel, reason)
			return nil
		}

		mu.Lock()
		uploads = append(uploads, pending{rel: rel, content: string(data)})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("failed to walk %s: %w", localDir, err)
	}

	slices.SortFunc(uploads, func(a, b pending) int { return strings.Compare(a.rel, b.rel) })
	for _, u := range uploads {
		remote := path.Join("/", remoteDir, u.rel)
		if err := c.Write(ctx, ref, remote, u.content); err != nil {
			return result, err
		}
		result.Written = append(result.Written, remote)
	}

	c.log.Debug("push complete",
		zap.String("session", ref.String()),
		zap.Int("written", len(result.Written)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

func excluded(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// textReason returns why data cannot be pushed as text, or ""
func textReason(data []byte) string {
	if !IsText(data) {
		return "binary"
	}
	if utf8.Valid(data) {
		return ""
	}
	detector := chardet.NewTextDetector()
	if best, err := detector.DetectBest(data); err == nil && best != nil {
		return "not utf-8 (" + strings.ToLower(best.Charset) + ")"
	}
	return "not utf-8"
}

// Compression selects the Export stream format
type Compression string

const (
	CompressionZstd Compression = "zstd"
	CompressionGzip Compression = "gzip"
	CompressionNone Compression = "none"
)

// ParseCompression maps a flag value to a Compression
func ParseCompression(s string) (Compression, error) {
	switch c := Compression(strings.ToLower(s)); c {
	case CompressionZstd, CompressionGzip, CompressionNone:
		return c, nil
	case "":
		return CompressionZstd, nil
	default:
		return "", fmt.Errorf("unknown compression %q", s)
	}
}

// Export writes every file of the workspace to w as a tar stream and
// returns the number of files archived
func (c *Client) Export(ctx context.Context, ref types.SessionRef, w io.Writer, compression Compression) (int, error) {
	var (
		out    io.Writer = w
		closer io.Closer
	)
	switch compression {
	case CompressionZstd, "":
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return 0, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		out, closer = zw, zw
	case CompressionGzip:
		gw := gzip.NewWriter(w)
		out, closer = gw, gw
	case CompressionNone:
	default:
		return 0, fmt.Errorf("unknown compression %q", compression)
	}

	tw := tar.NewWriter(out)
	count := 0
	now := time.Now()
	err := c.Walk(ctx, ref, "/", func(entry types.FileEntry) error {
		name := strings.TrimPrefix(entry.Path, "/")
		if entry.IsDir {
			return tw.WriteHeader(&tar.Header{Typeflag: tar.TypeDir, Name: name + "/", Mode: 0o755, ModTime: now})
		}
		file, err := c.Read(ctx, ref, entry.Path)
		if err != nil {
			return err
		}
		if err := tw.WriteHeader(&tar.Header{
			Typeflag: tar.TypeReg,
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(file.Content)),
			ModTime:  now,
		}); err != nil {
			return err
		}
		if _, err := io.WriteString(tw, file.Content); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return count, err
	}

	if err := tw.Close(); err != nil {
		return count, fmt.Errorf("failed to finish archive: %w", err)
	}
	if closer != nil {
		if err := closer.Close(); err != nil {
			return count, fmt.Errorf("failed to finish compression: %w", err)
		}
	}
	return count, nil
}
