package utils

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/sigweihq/walletkit/pkg/constants"
)

func CreateHTTPClientWithTimeouts() *http.Client {
	return &http.Client{
		Timeout: constants.ExplorerTimeout,
		Transport: &http.Transport{
			TLSHandshakeTimeout:   constants.TLSHandshakeTimeout,
			ResponseHeaderTimeout: constants.ResponseHeaderTimeout,
			ExpectContinueTimeout: constants.ExpectContinueTimeout,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse // Disable redirects to prevent redirect-based SSRF
		},
	}
}

// ValidateEndpointURL validates that an RPC or explorer URL is secure
// Returns error if URL doesn't use HTTPS (except for localhost/127.0.0.1 for testing)
func ValidateEndpointURL(url string) error {
	if !strings.HasPrefix(url, "https://") {
		// Allow http://localhost and http://127.0.0.1 for testing
		if strings.HasPrefix(url, "http://localhost") ||
			strings.HasPrefix(url, "http://127.0.0.1") ||
			strings.HasPrefix(url, "http://[::1]") {
			return nil
		}
		return fmt.Errorf("endpoint URL must use HTTPS: %s", url)
	}
	return nil
}

// RedactAPIKey hides an API key embedded in a URL before it is logged
func RedactAPIKey(url, apiKey string) string {
	if apiKey == "" {
		return url
	}
	return strings.ReplaceAll(url, apiKey, "REDACTED")
}
