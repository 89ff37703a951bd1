package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/searchapp/pkg/errors"
)

// downstreamError mirrors httputil.ErrorResponse inside the response envelope.
type downstreamError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// converts it into an error that keeps the downstream semantics.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", service, resp.StatusCode, err)
	}

	message := string(body)
	var downstream downstreamError
	if json.Unmarshal(body, &downstream) == nil && downstream.Error != nil {
		message = downstream.Error.Message
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resource := "resource"
		if resp.Request != nil {
			resource = resp.Request.URL.Path
		}
		return apperrors.NotFound(service, resource)
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.InvalidInput(fmt.Sprintf("%s: %s", service, message))
	case resp.StatusCode >= 500:
		return apperrors.ServiceUnavailable(service, fmt.Errorf("status %d: %s", resp.StatusCode, message))
	default:
		return fmt.Errorf("%s returned status %d: %s", service, resp.StatusCode, message)
	}
}
