package model

import "time"

// Status is the outcome of crawling a single URL.
type Status string

const (
	// StatusSuccess means the page was fetched and extracted.
	StatusSuccess Status = "success"

	// StatusFailed means every attempt failed or the failure was terminal.
	StatusFailed Status = "failed"
)

// CrawlResult is the outcome of fetching one URL.
// Exactly one of Page and Err is set, depending on Status.
type CrawlResult struct {
	URL      string
	Status   Status
	Page     *DocumentPage
	Err      string
	Duration time.Duration
}

// NewSuccessResult creates a successful result carrying page.
func NewSuccessResult(pageURL string, page *DocumentPage, elapsed time.Duration) CrawlResult {
	return CrawlResult{
		URL:      pageURL,
		Status:   StatusSuccess,
		Page:     page,
		Duration: elapsed,
	}
}

// NewFailedResult creates a failed result describing err.
func NewFailedResult(pageURL string, err error, elapsed time.Duration) CrawlResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return CrawlResult{
		URL:      pageURL,
		Status:   StatusFailed,
		Err:      msg,
		Duration: elapsed,
	}
}

// Succeeded reports whether the result carries a page.
func (r CrawlResult) Succeeded() bool {
	return r.Status == StatusSuccess && r.Page != nil
}
