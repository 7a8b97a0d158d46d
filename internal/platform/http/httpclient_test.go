package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_Defaults(t *testing.T) {
	t.Parallel()

	c := NewHTTPClient(ClientConfig{Timeout: 7 * time.Second})

	assert.Equal(t, 7*time.Second, c.Timeout)
	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, defaultTLSTimeout, tr.TLSHandshakeTimeout)
	assert.Equal(t, defaultMaxIdleConns, tr.MaxIdleConns)
	assert.NotNil(t, tr.Proxy)
}

func TestNewHTTPClient_Overrides(t *testing.T) {
	t.Parallel()

	c := NewHTTPClient(ClientConfig{TLSHandshakeTimeout: time.Second, MaxIdleConns: 4})

	tr := c.Transport.(*http.Transport)
	assert.Equal(t, time.Second, tr.TLSHandshakeTimeout)
	assert.Equal(t, 4, tr.MaxIdleConns)
	assert.Equal(t, 4, tr.MaxIdleConnsPerHost)
}
