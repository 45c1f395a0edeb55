package repository

import (
	"io"
	"net/http"
	"strings"
)

// RoundTripperFunc allows us to easily mock http.Client responses in tests.
type RoundTripperFunc func(*http.Request) *http.Response

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

// JSONResponse builds a canned response for a RoundTripperFunc.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}
