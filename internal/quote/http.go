package quote

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultRetryWait = 250 * time.Millisecond
	maxRetryWait     = 2 * time.Second
	userAgent        = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)"
)

func newRestClient(opts Options) *resty.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = defaultRetryWait
	}

	return resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(max(opts.RetryWait, maxRetryWait)).
		AddRetryCondition(isRetryableResp)
}

// isRetryableResp retries transport errors, server errors, throttling and
// request timeouts.
func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}

	code := r.StatusCode()
	switch {
	case code >= 500 && code <= 599:
		return true
	case code == http.StatusTooManyRequests, code == http.StatusRequestTimeout:
		return true
	default:
		return false
	}
}
