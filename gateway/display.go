package gateway

import "log/slog"

// DisplaySink receives the two document-level side effects the gateway can
// trigger while classifying a response: re-pointing the display at a redirect
// target, and replacing the display with a returned document body. The
// default sink only logs; a UI shell may substitute its own.
type DisplaySink interface {
	RedirectTo(url string)
	ReplaceDocument(body []byte)
}

// LogSink logs the raw material instead of touching any display.
type LogSink struct{}

func (LogSink) RedirectTo(url string) {
	slog.Warn("GATEWAY: Display re-pointed to redirect target", "url", url)
}

func (LogSink) ReplaceDocument(body []byte) {
	preview := body
	if len(preview) > 512 {
		preview = preview[:512]
	}
	slog.Warn("GATEWAY: Captured fallback document body", "body_len", len(body), "preview", string(preview))
}
