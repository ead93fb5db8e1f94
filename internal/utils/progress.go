package utils

import "github.com/schollz/progressbar/v3"

// Standard progress bar descriptions
const (
	DescDownloading = "Downloading"
	DescExtracting  = "Extracting"
	DescConverting  = "Converting"
)

// NewProgressBar creates a consistently styled progress bar. Use -1 for an
// unknown total to get spinner rendering.
func NewProgressBar(total int, description string) *progressbar.ProgressBar {
	opts := []progressbar.Option{
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
	}

	if total < 0 {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetRenderBlankState(true),
		)
	} else {
		opts = append(opts,
			progressbar.OptionShowIts(),
		)
	}

	return progressbar.NewOptions(total, opts...)
}

// NewByteProgressBar creates a progress bar for byte transfers, showing
// human-readable sizes. totalBytes may be -1 when the server does not
// report a Content-Length.
func NewByteProgressBar(totalBytes int64, description string) *progressbar.ProgressBar {
	return progressbar.DefaultBytes(totalBytes, description)
}
