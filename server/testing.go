/*
	This file contains functions useful for testing dvedit in other packages.
	Due to the way Go handles compilation of *_test.go files, these functions
	cannot be in a _test.go file since they would be unavailable to test files
	in external packages.  So these functions are exported and contain the
	"Test" keyword.
*/

package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

var testServer sync.Mutex

// OpenTest resets the server to an empty, unauthenticated configuration with a small
// sample cache.  Tests using the server are serialized until CloseTest is called.
func OpenTest() error {
	testServer.Lock()
	tc = tomlConfig{}
	tc.Server.MaxSampleResponse = DefaultMaxSampleResponse
	tc.Cache = map[string]sizeConfig{"samples": {Size: 16}}
	tcLocation = ""
	if err := loadAuthFile(); err != nil {
		testServer.Unlock()
		return err
	}
	resetVolumes()
	initSampleCache(CacheSize("samples"))
	initRoutes()
	return nil
}

// CloseTest drops all volumes and event subscribers.
func CloseTest() {
	closeEventClients()
	resetVolumes()
	testServer.Unlock()
}

// TestHTTPResponse returns a response from a test run of the dvedit server.
// Use TestHTTP if you just want the response body bytes.
func TestHTTPResponse(t *testing.T, method, urlStr string, payload io.Reader) *httptest.ResponseRecorder {
	req, err := http.NewRequest(method, urlStr, payload)
	if err != nil {
		t.Fatalf("Unsuccessful %s on %q: %v\n", method, urlStr, err)
	}
	resp := httptest.NewRecorder()
	ServeSingleHTTP(resp, req)
	return resp
}

// TestHTTP returns the response body bytes for a test request, making sure any response has
// status OK.
func TestHTTP(t *testing.T, method, urlStr string, payload io.Reader) []byte {
	resp := TestHTTPResponse(t, method, urlStr, payload)
	if resp.Code != http.StatusOK {
		t.Fatalf("Bad server response (%d) to %s on %q: %s\n", resp.Code, method, urlStr, resp.Body.String())
	}
	return resp.Body.Bytes()
}

// TestBadHTTP expects a HTTP response with an error status code and returns it.
func TestBadHTTP(t *testing.T, method, urlStr string, payload io.Reader) int {
	resp := TestHTTPResponse(t, method, urlStr, payload)
	if resp.Code == http.StatusOK {
		t.Fatalf("Expected bad server response to %s on %q, got %d instead.\n", method, urlStr, resp.Code)
	}
	return resp.Code
}

// CreateTestVolume creates a volume through the web API.
func CreateTestVolume(t *testing.T, name string, ppc, count [3]int32) {
	config := fmt.Sprintf(`{"points_per_chunk": [%d,%d,%d], "chunk_count": [%d,%d,%d]}`,
		ppc[0], ppc[1], ppc[2], count[0], count[1], count[2])
	TestHTTP(t, "POST", WebAPIPath+"volume/"+name, bytes.NewBufferString(config))
}

// TestJSON decodes the JSON response of a successful request into v.
func TestJSON(t *testing.T, method, urlStr string, payload io.Reader, v interface{}) {
	data := TestHTTP(t, method, urlStr, payload)
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("Unable to decode JSON response to %s on %q: %v\n", method, urlStr, err)
	}
}

// TestResponseCode serves a prepared request and returns its status code.
func TestResponseCode(req *http.Request) int {
	resp := httptest.NewRecorder()
	ServeSingleHTTP(resp, req)
	return resp.Code
}
