// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

// Package testhelper holds shared test utilities.
package testhelper

import (
	"bytes"
	"io"
	"net/http"
	"os"
	"testing"
)

const (
	// TestOnlineAPIURL is a reachable endpoint used by the opt-in online tests
	TestOnlineAPIURL = "https://nominatim.openstreetmap.org/status?format=json"

	onlineTestsEnv = "PERFORM_ONLINE_TESTS"
)

// MockRoundTripper is a http.RoundTripper that delegates to Fn.
type MockRoundTripper struct {
	Fn func(req *http.Request) (*http.Response, error)
}

func (m MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Fn(req)
}

// PerformIntegrationTests skips the calling test unless online tests are enabled.
func PerformIntegrationTests(t *testing.T) {
	t.Helper()
	if val := os.Getenv(onlineTestsEnv); val == "" {
		t.Skipf("skipping online test, set %s to enable", onlineTestsEnv)
	}
}

// JSONResponse returns a 200 response with the given body.
func JSONResponse(body string) *http.Response {
	return Response(http.StatusOK, body)
}

// Response returns a response with the given status code and body.
func Response(status int, body string) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     header,
	}
}

// FileResponse returns a 200 response streaming the given file.
func FileResponse(t *testing.T, path string) *http.Response {
	t.Helper()
	data, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open JSON response file: %s", err)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       data,
		Header:     make(http.Header),
	}
}
