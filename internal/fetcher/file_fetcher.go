package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"
)

const _maxImageSize = 10 * 1024 * 1024 // 10 MB

// FileFetcher reads cached artwork from local disk
type FileFetcher struct {
	logger *zap.Logger
}

// NewFileFetcher creates a new file-based fetcher instance
func NewFileFetcher(logger *zap.Logger) *FileFetcher {
	return &FileFetcher{logger: logger}
}

// Fetch reads image data from path, bounded to 10 MB
func (f *FileFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open artwork: %w", err)
	}
	defer file.Close()

	limitReader := io.LimitReader(file, _maxImageSize)

	data, err := io.ReadAll(limitReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read artwork: %w", err)
	}

	if contentType := http.DetectContentType(data); !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("file is not an image: %s", contentType)
	}

	f.logger.Debug("Artwork read successfully", zap.Int("bytes", len(data)), zap.String("path", path))
	return data, nil
}
