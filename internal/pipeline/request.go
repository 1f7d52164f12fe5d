package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Request bounds.
const (
	MinCount           = 10
	MaxCount           = 50
	DefaultCount       = 20
	MinClipSeconds     = 20
	MaxClipSeconds     = 60
	DefaultClipSeconds = 30
)

var emailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)

// Request is one mashup order.
type Request struct {
	Query       string `json:"query"`
	Count       int    `json:"count"`
	ClipSeconds int    `json:"clip_seconds"`
	Recipient   string `json:"recipient,omitempty"`
	// KeepDir receives a copy of the archive before the working directory is
	// removed. Empty means the archive is only delivered.
	KeepDir string `json:"keep_dir,omitempty"`
}

// Normalize trims fields and applies defaults for zero values.
func (r Request) Normalize() Request {
	r.Query = strings.Join(strings.Fields(r.Query), " ")
	r.Recipient = strings.TrimSpace(r.Recipient)
	r.KeepDir = strings.TrimSpace(r.KeepDir)
	if r.Count == 0 {
		r.Count = DefaultCount
	}
	if r.ClipSeconds == 0 {
		r.ClipSeconds = DefaultClipSeconds
	}
	return r
}

// Validate checks the request against the accepted ranges. Recipient is only
// checked when present; the Driver decides whether one is required.
func (r Request) Validate() error {
	var problems []error
	if r.Query == "" {
		problems = append(problems, errors.New("query must not be empty"))
	}
	if r.Count < MinCount || r.Count > MaxCount {
		problems = append(problems, fmt.Errorf("count must be between %d and %d, got %d", MinCount, MaxCount, r.Count))
	}
	if r.ClipSeconds < MinClipSeconds || r.ClipSeconds > MaxClipSeconds {
		problems = append(problems, fmt.Errorf("clip duration must be between %d and %d seconds, got %d", MinClipSeconds, MaxClipSeconds, r.ClipSeconds))
	}
	if r.Recipient != "" && !ValidEmail(r.Recipient) {
		problems = append(problems, fmt.Errorf("invalid email address %q", r.Recipient))
	}
	return errors.Join(problems...)
}

// ValidEmail reports whether address looks like a deliverable email address.
func ValidEmail(address string) bool {
	return emailPattern.MatchString(strings.TrimSpace(address))
}
