package fetch

import (
	"context"
	"fmt"
)

// Request describes one item to retrieve. Slot is unique within a run and
// determines the output filename.
type Request struct {
	SourceURL      string
	Slot           int
	DestinationDir string
}

// Reason classifies a failed Outcome.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonOther            Reason = "other"
	ReasonExhaustedRetries Reason = "exhausted_retries"
	ReasonCanceled         Reason = "canceled"
)

// Outcome reports the result of a single Request. Reason is ReasonNone on
// success, in which case Path names the written file.
type Outcome struct {
	Request  Request
	Path     string
	Reason   Reason
	Err      error
	Attempts int
}

// Succeeded reports whether the outcome carries a payload path.
func (o Outcome) Succeeded() bool {
	return o.Reason == ReasonNone && o.Path != ""
}

func (o Outcome) String() string {
	if o.Succeeded() {
		return fmt.Sprintf("slot %d: ok (%s)", o.Request.Slot, o.Path)
	}
	return fmt.Sprintf("slot %d: %s after %d attempt(s)", o.Request.Slot, o.Reason, o.Attempts)
}

// Extractor downloads the best audio stream for url, transcoding it to the
// configured format and writing it through the yt-dlp style outputTemplate.
// Returned errors should carry the upstream diagnostic text so block signals
// can be recognized.
type Extractor interface {
	Extract(ctx context.Context, url, outputTemplate, userAgent string) error
}

// ItemFetcher retrieves a single Request. Fetcher is the production
// implementation.
type ItemFetcher interface {
	Fetch(ctx context.Context, req Request) Outcome
}

type attemptState struct {
	count    int
	identity string
	lastErr  error
}
