// Package logfields defines canonical structured log field helpers so that
// field names do not drift across packages.
package logfields

import "log/slog"

const (
	KeyBuildID    = "build_id"
	KeySlug       = "slug"
	KeyPath       = "path"
	KeyError      = "error"
	KeyDurationMS = "duration_ms"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyRemoteAddr = "remote_addr"
	KeyUserAgent  = "user_agent"
	KeyPages      = "pages"
	KeySkipped    = "skipped"
)

func BuildID(id string) slog.Attr       { return slog.String(KeyBuildID, id) }
func Slug(s string) slog.Attr           { return slog.String(KeySlug, s) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Method(m string) slog.Attr         { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr         { return slog.Int(KeyStatus, code) }
func RemoteAddr(addr string) slog.Attr  { return slog.String(KeyRemoteAddr, addr) }
func UserAgent(ua string) slog.Attr     { return slog.String(KeyUserAgent, ua) }
func Pages(n int) slog.Attr             { return slog.Int(KeyPages, n) }
func Skipped(n int) slog.Attr           { return slog.Int(KeySkipped, n) }

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
