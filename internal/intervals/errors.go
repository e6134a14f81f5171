package intervals

import "fmt"

// ErrorKind classifies upstream HTTP failures the way callers care about
// them; everything still carries the raw status and body for diagnostics.
type ErrorKind string

const (
	KindAuthentication ErrorKind = "authentication"
	KindAuthorization  ErrorKind = "authorization"
	KindNotFound       ErrorKind = "not_found"
	KindRateLimit      ErrorKind = "rate_limit"
	KindUpstream       ErrorKind = "upstream"
)

// APIError is a non-2xx response from intervals.icu. It is never retried.
type APIError struct {
	StatusCode int
	Body       string
	URL        string
	Kind       ErrorKind
	// RetryAfter is the parsed Retry-After header in seconds for 429
	// responses, 0 when absent.
	RetryAfter int
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindAuthentication:
		return "invalid API key or authentication failed"
	case KindAuthorization:
		return "access denied to this resource"
	case KindRateLimit:
		if e.RetryAfter > 0 {
			return fmt.Sprintf("API rate limit exceeded, retry after %d seconds", e.RetryAfter)
		}
		return "API rate limit exceeded"
	}
	if e.Body != "" {
		return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("API request failed with status %d", e.StatusCode)
}

func kindForStatus(status int) ErrorKind {
	switch status {
	case 401:
		return KindAuthentication
	case 403:
		return KindAuthorization
	case 404:
		return KindNotFound
	case 429:
		return KindRateLimit
	}
	return KindUpstream
}

// TransportError is a network-level failure: DNS, connection refused,
// timeout, cancelled context. The request may never have reached the API.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError is a 2xx response whose body is not valid JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid JSON in response body: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
