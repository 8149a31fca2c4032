// AngelaMos | 2026
// request_test.go

package core

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", ClientIP(req))

	req.RemoteAddr = "not-a-host-port"
	assert.Equal(t, "not-a-host-port", ClientIP(req))

	req.Header.Set("X-Real-IP", " 192.0.2.7 ")
	assert.Equal(t, "192.0.2.7", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.1, 198.51.100.2")
	assert.Equal(t, "198.51.100.2", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.1, ")
	assert.Equal(t, "192.0.2.7", ClientIP(req))
}
