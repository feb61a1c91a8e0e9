// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by request/response calls to the arena API.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// StreamClient has no overall timeout; SSE responses stay open indefinitely.
var StreamClient = &http.Client{}
