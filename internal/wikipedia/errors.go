package wikipedia

import (
	"errors"
	"fmt"
	"strings"
)

// PageError means the title (or page id) does not match any page
type PageError struct {
	Title  string
	PageID int64
}

func (e *PageError) Error() string {
	if e.Title == "" && e.PageID != 0 {
		return fmt.Sprintf("page id %d does not match any pages", e.PageID)
	}
	return fmt.Sprintf("page %q does not match any pages", e.Title)
}

// DisambiguationError means the title resolves to a disambiguation page
type DisambiguationError struct {
	Title   string
	Options []string
}

func (e *DisambiguationError) Error() string {
	return fmt.Sprintf("%q may refer to: %s", e.Title, strings.Join(e.Options, ", "))
}

// InvalidTitleError means the provider rejected the title itself, e.g. it
// contains characters that are illegal in page names
type InvalidTitleError struct {
	Title  string
	Reason string
}

func (e *InvalidTitleError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid page title %q", e.Title)
	}
	return fmt.Sprintf("invalid page title %q: %s", e.Title, e.Reason)
}

// APIError is an error object returned by the MediaWiki API
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error [%s]: %s", e.Code, e.Info)
}

// TimeoutError means the provider did not answer in time
type TimeoutError struct {
	Subject string
	Err     error
}

func (e *TimeoutError) Error() string {
	if e.Subject == "" {
		return "request to Wikipedia timed out, try again in a few seconds"
	}
	return fmt.Sprintf("request for %q timed out, try again in a few seconds", e.Subject)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// ContinuationLimitError means a list did not complete within the allowed
// number of continuation requests. No partial list is returned.
type ContinuationLimitError struct {
	Subject string
	Limit   int
}

func (e *ContinuationLimitError) Error() string {
	return fmt.Sprintf("list for %q did not complete within %d continuation requests", e.Subject, e.Limit)
}

// timeoutInfos are API error infos the provider uses for overload
var timeoutInfos = map[string]bool{
	"HTTP request timed out.": true,
	"Pool queue is full":      true,
}

// IsLookupMiss reports whether err means the requested title did not lead to
// exactly one page: it is missing, ambiguous or invalid
func IsLookupMiss(err error) bool {
	var (
		pe *PageError
		de *DisambiguationError
		ie *InvalidTitleError
	)
	return errors.As(err, &pe) || errors.As(err, &de) || errors.As(err, &ie)
}
