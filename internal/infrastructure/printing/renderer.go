package printing

import "time"

// PaperSize is a page size in inches
type PaperSize struct {
	Width  float64
	Height float64
}

// Standard paper sizes
var (
	PaperLetter = PaperSize{Width: 8.5, Height: 11}
	Paper4x6    = PaperSize{Width: 4, Height: 6}
)

// Margins are page margins in inches
type Margins struct {
	Top, Right, Bottom, Left float64
}

// DefaultMargins is used for packing slips
func DefaultMargins() Margins {
	return Margins{Top: 0.4, Right: 0.4, Bottom: 0.4, Left: 0.4}
}

// RenderOptions controls page layout
type RenderOptions struct {
	Paper     PaperSize
	Margins   Margins
	Landscape bool
	Timeout   time.Duration
}

// RenderError represents an error during PDF rendering
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidHTML   = "INVALID_HTML"
	ErrCodeClosed        = "RENDERER_CLOSED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
