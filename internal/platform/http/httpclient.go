// Package http provides HTTP plumbing shared by outbound clients and the API server.
package http

import (
	"net"
	"net/http"
	"time"
)

// ClientConfig tunes the outbound HTTP client. Zero values fall back to the defaults below.
type ClientConfig struct {
	Timeout             time.Duration // whole request, including body read
	DialTimeout         time.Duration
	TLSHandshakeTimeout time.Duration
	MaxIdleConns        int
}

const (
	defaultDialTimeout  = 5 * time.Second
	defaultTLSTimeout   = 5 * time.Second
	defaultMaxIdleConns = 100
)

// NewHTTPClient は外部API呼び出し用に設定されたHTTPクライアントを作成します。
// http.DefaultClientにはタイムアウトがないため、常にこちらを使用すること。
func NewHTTPClient(cfg ClientConfig) *http.Client {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.TLSHandshakeTimeout <= 0 {
		cfg.TLSHandshakeTimeout = defaultTLSTimeout
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = defaultMaxIdleConns
	}

	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConns,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
	}
	return &http.Client{Timeout: cfg.Timeout, Transport: t}
}
