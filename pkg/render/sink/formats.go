package sink

import (
	"strings"

	"github.com/matzehuels/pegtower/pkg/errors"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatGIF  = "gif"
	FormatJSON = "json"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF, FormatGIF, FormatJSON}

// ValidateFormat checks that f names a supported format.
func ValidateFormat(f string) error {
	for _, known := range Formats {
		if f == known {
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be one of %s)", f, strings.Join(Formats, ", "))
}

// ContentType returns the MIME type for format f.
func ContentType(f string) string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	case FormatGIF:
		return "image/gif"
	case FormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
