package service

import (
	"course_media_backend/internal/config"
	"course_media_backend/internal/util"
	"context"
	"fmt"
	"net/http"
)

// StreamService 从对象存储拉取媒体字节。每次拉取都现签 URL，
// 请求间绝不复用；取消请求上下文即取消上游连接。
type StreamService struct {
	Storage *StorageService
	client  *http.Client
}

func NewStreamService(storage *StorageService, cfg *config.Config) *StreamService {
	return &StreamService{
		Storage: storage,
		client: &http.Client{
			// 不设整体超时：正文按流式传输，时长由客户端消费速度决定。
			// 只限制响应头等待时间。
			Transport: &http.Transport{
				ResponseHeaderTimeout: cfg.Stream.UpstreamTimeout,
			},
		},
	}
}

// Fetch 签发新 URL 并发起上游 GET，Range 头原样转发。
// 返回的响应体由调用方负责关闭。
func (s *StreamService) Fetch(ctx context.Context, storageKey string, kind ResourceKind, rangeHeader string) (*http.Response, error) {
	signedURL, err := s.Storage.SignedURL(ctx, storageKey, kind)
	if err != nil {
		return nil, fmt.Errorf("sign url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signedURL, nil)
	if err != nil {
		return nil, err
	}
	if rangeHeader != "" {
		req.Header.Set(util.HeaderRange, rangeHeader)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrUpstreamFetch, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: upstream returned %d", util.ErrUpstreamFetch, resp.StatusCode)
	}

	return resp, nil
}
