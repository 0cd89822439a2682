package fetch

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a fetch failure
type Kind string

const (
	KindNotFound   Kind = "not_found"  // 404, 410 and other non-auth 4xx
	KindAuth       Kind = "auth"       // 401, 403 or a required key is missing
	KindTransient  Kind = "transient"  // Network, timeout, 429/5xx after retries
	KindDisallowed Kind = "disallowed" // robots.txt forbids the path
)

// Error is a classified fetch failure
type Error struct {
	Kind       Kind
	StatusCode int // 0 when no response was received
	URL        string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: unexpected status: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	default:
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err, or "" if err is not a fetch error
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsNotFound reports whether err means the resource does not exist
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsAuth reports whether err means a credential is missing or rejected
func IsAuth(err error) bool { return KindOf(err) == KindAuth }

// IsTransient reports whether err is worth retrying later. Unclassified
// errors count as transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	k := KindOf(err)
	return k == KindTransient || k == KindDisallowed || k == ""
}

// classifyStatus maps a final HTTP status to a kind
func classifyStatus(code int) Kind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusTooManyRequests || code >= 500:
		return KindTransient
	case code >= 400:
		return KindNotFound
	default:
		return KindTransient
	}
}

// isRetryableStatus reports whether a status is worth another attempt
func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
