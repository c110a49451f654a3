package snapsolve

import (
	"encoding/base64"
	"os"

	"github.com/sirupsen/logrus"
)

// ScreenshotSource is the capture collaborator. The primary queue feeds
// extraction; the extra queue holds follow-up captures for debugging.
type ScreenshotSource interface {
	ScreenshotQueue() []string
	ExtraScreenshotQueue() []string
	// ImagePreview returns a data-URL preview for UI display; the processor
	// itself reads the full file from disk.
	ImagePreview(path string) (string, error)
	ClearExtraScreenshotQueue()
}

type screenshot struct {
	path string
	data string // base64-encoded file contents
}

// loadScreenshots reads and encodes the queued files, skipping any that
// have disappeared from disk since capture.
func loadScreenshots(log *logrus.Entry, paths []string) []screenshot {
	out := make([]screenshot, 0, len(paths))
	for _, p := range paths {
		raw, err := os.ReadFile(p)
		if err != nil {
			log.WithError(err).WithField("path", p).Warn("skipping unreadable screenshot")
			continue
		}
		out = append(out, screenshot{path: p, data: base64.StdEncoding.EncodeToString(raw)})
	}
	return out
}

func imageData(shots []screenshot) []string {
	out := make([]string, len(shots))
	for i, s := range shots {
		out[i] = s.data
	}
	return out
}
