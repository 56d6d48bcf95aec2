package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ErrUnavailable covers every upstream failure: the web view only needs
// to know the image cannot be served.
var ErrUnavailable = errors.New("media unavailable")

// FileResolver переводит file id в прямую ссылку на файл у апстрима.
type FileResolver interface {
	FileURL(ctx context.Context, fileID string) (string, error)
}

type Service struct {
	resolver FileResolver
	client   *http.Client
}

func NewService(resolver FileResolver) *Service {
	return &Service{
		resolver: resolver,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

const maxImageSize = 10 << 20 // 10 MB

func (s *Service) Fetch(ctx context.Context, fileID string) ([]byte, string, error) {
	url, err := s.resolver.FileURL(ctx, fileID)
	if err != nil {
		log.Printf("resolve file %s: %v", fileID, err)
		return nil, "", ErrUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("fetch file %s: %v", fileID, err)
		return nil, "", ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", ErrUnavailable
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, "", ErrUnavailable
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return data, contentType, nil
}
