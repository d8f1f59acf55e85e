package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrCanceled = errors.New("fetch aborted: parent context was canceled")

// StatusError is returned for any non-200 response. It is not retried.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to process the request for %s due to http status %d", e.URL, e.StatusCode)
}

func (hc *HttpClientWrapper) methodRegister(ctx context.Context, method string, urlString string, params map[string]string, headers map[string]string) (*http.Request, error) {
	if method != http.MethodGet && method != http.MethodHead {
		return nil, fmt.Errorf("unsupported HTTP method: %s", method)
	}
	request, err := http.NewRequestWithContext(ctx, method, urlString, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating %s request: %w", method, err)
	}
	if len(params) > 0 {
		q := request.URL.Query()
		for k, v := range params {
			q.Add(k, v)
		}
		request.URL.RawQuery = q.Encode()
	}
	if hc.userAgent != "" {
		request.Header.Set("User-Agent", hc.userAgent)
	}
	for k, v := range headers {
		request.Header.Set(k, v)
	}
	return request, nil
}

// attempt performs one request under its own timeout and reads the whole body.
func (hc *HttpClientWrapper) attempt(ctx context.Context, request *http.Request) ([]byte, error) {
	childCtx, cancel := context.WithTimeout(ctx, hc.contextTimeout)
	defer cancel()
	start := time.Now()
	resp, err := hc.client.Do(request.WithContext(childCtx))
	if err != nil {
		if childCtx.Err() == context.DeadlineExceeded {
			log.Warnf("%s - %s %.3fs", childCtx.Err(), request.URL, time.Since(start).Seconds())
		}
		return nil, err
	}
	defer resp.Body.Close()
	log.Infof("Request: %s %s %s %.3fs", request.Method, request.URL.String(), resp.Status, time.Since(start).Seconds())
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: request.URL.String(), StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return io.ReadAll(resp.Body)
}

// Fetch performs the request, retrying transport failures up to maxRetries times with
// a linearly growing delay. HTTP status failures are returned without retrying.
func (hc *HttpClientWrapper) Fetch(ctx context.Context, method string, urlString string, params map[string]string, headers map[string]string) ([]byte, error) {
	request, err := hc.methodRegister(ctx, method, urlString, params, headers)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for attempt := 0; attempt <= hc.maxRetries; attempt++ {
		if ctx.Err() != nil {
			log.Warnf("Fetch stopped: parent context canceled before attempt %d for %s", attempt, urlString)
			return nil, ErrCanceled
		}
		result, err := hc.attempt(ctx, request)
		if err == nil {
			return result, nil
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, err
		}
		if ctx.Err() != nil {
			log.Warnf("Fetch stopped: parent context canceled after attempt %d for %s", attempt, urlString)
			return nil, ErrCanceled
		}
		lastErr = fmt.Errorf("attempt %d: error performing HTTP request: %w", attempt, err)
		log.Error(lastErr)
		if attempt < hc.maxRetries {
			backoffDelay := time.Duration(attempt+1) * hc.initialRetryDelay
			log.Infof("Retrying in %s (attempt %d/%d) for %s", backoffDelay, attempt+1, hc.maxRetries, urlString)
			select {
			case <-ctx.Done():
				return nil, ErrCanceled
			case <-time.After(backoffDelay):
			}
		}
	}
	log.Errorf("Fetch failed after %d attempts", hc.maxRetries+1)
	return nil, fmt.Errorf("fetch failed after %d attempts: %w", hc.maxRetries+1, lastErr)
}

// Get fetches url with no extra parameters or headers.
func (hc *HttpClientWrapper) Get(ctx context.Context, url string) ([]byte, error) {
	return hc.Fetch(ctx, http.MethodGet, url, nil, nil)
}
