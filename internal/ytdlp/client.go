// Package ytdlp adapts the yt-dlp command line tool to the fetch.Extractor
// contract.
package ytdlp

import (
	"context"
	"strconv"
	"strings"

	goytdlp "github.com/lrstanley/go-ytdlp"

	"mashup/internal/services"
)

// Options configure the yt-dlp invocation.
type Options struct {
	Binary       string
	AudioFormat  string
	AudioQuality string
	Retries      int
}

// Client runs yt-dlp once per Extract call.
type Client struct {
	opts Options
}

// New constructs a Client with defaults for empty fields.
func New(opts Options) *Client {
	if strings.TrimSpace(opts.AudioFormat) == "" {
		opts.AudioFormat = "mp3"
	}
	if strings.TrimSpace(opts.AudioQuality) == "" {
		opts.AudioQuality = "192K"
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Client{opts: opts}
}

// Extract downloads the best audio stream of url, converts it to the
// configured format, and writes it through outputTemplate.
func (c *Client) Extract(ctx context.Context, url, outputTemplate, userAgent string) error {
	cmd := c.command(outputTemplate, userAgent)
	result, err := cmd.Run(ctx, url)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	detail := ""
	if result != nil {
		detail = lastLines(result.Stderr, 3)
	}
	if detail == "" {
		return services.Wrap(services.ErrExternalTool, "fetch", "yt-dlp", "", err)
	}
	return services.Wrap(services.ErrExternalTool, "fetch", "yt-dlp", detail, err)
}

func (c *Client) command(outputTemplate, userAgent string) *goytdlp.Command {
	retries := strconv.Itoa(c.opts.Retries)
	cmd := goytdlp.New().
		Format("bestaudio/best").
		ExtractAudio().
		AudioFormat(c.opts.AudioFormat).
		AudioQuality(c.opts.AudioQuality).
		Output(outputTemplate).
		Retries(retries).
		FragmentRetries(retries).
		NoPlaylist().
		ForceOverwrites().
		NoProgress()
	if strings.TrimSpace(userAgent) != "" {
		cmd = cmd.AddHeaders("User-Agent:" + userAgent)
	}
	if bin := strings.TrimSpace(c.opts.Binary); bin != "" {
		cmd = cmd.SetExecutable(bin)
	}
	return cmd
}

// lastLines returns up to n trailing non-empty lines of text joined by " | ".
func lastLines(text string, n int) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	kept := make([]string, 0, n)
	for i := len(lines) - 1; i >= 0 && len(kept) < n; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		kept = append([]string{line}, kept...)
	}
	return strings.Join(kept, " | ")
}
