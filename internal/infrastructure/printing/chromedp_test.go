package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wagginmeals/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

func TestNewChromedpRenderer_Defaults(t *testing.T) {
	r, err := NewChromedpRenderer(nil)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, defaultChromeTimeout, r.config.DefaultTimeout)
	assert.Equal(t, PaperLetter, r.config.Options.Paper)
	assert.Equal(t, DefaultMargins(), r.config.Options.Margins)
}

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings(config.PrintingConfig{
		Enabled:         true,
		ChromeRemoteURL: "ws://chrome:9222",
		Timeout:         5 * time.Second,
	}, zap.NewNop())

	assert.Equal(t, "ws://chrome:9222", cfg.RemoteURL)
	assert.Equal(t, 5*time.Second, cfg.DefaultTimeout)
	assert.True(t, cfg.NoSandbox)
}

func TestPrintParams(t *testing.T) {
	p := printParams(RenderOptions{Paper: Paper4x6, Margins: Margins{Top: 0.1, Right: 0.2, Bottom: 0.3, Left: 0.4}, Landscape: true})

	assert.Equal(t, 4.0, p.PaperWidth)
	assert.Equal(t, 6.0, p.PaperHeight)
	assert.Equal(t, 0.1, p.MarginTop)
	assert.Equal(t, 0.4, p.MarginLeft)
	assert.True(t, p.Landscape)
	assert.True(t, p.PrintBackground)

	p = printParams(RenderOptions{})
	assert.Equal(t, 8.5, p.PaperWidth)
	assert.Equal(t, 11.0, p.PaperHeight)
}

func TestWrapDocument(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"fragment", "<p>hi</p>", `<!DOCTYPE html><html><head><meta charset="UTF-8"></head><body><p>hi</p></body></html>`},
		{"full document", "<!DOCTYPE html><html><body>x</body></html>", "<!DOCTYPE html><html><body>x</body></html>"},
		{"html without doctype", "<HTML><body>x</body></HTML>", "<HTML><body>x</body></HTML>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, wrapDocument(tt.input))
		})
	}
}

func TestRenderPDF_RejectsEmptyHTML(t *testing.T) {
	r, err := NewChromedpRenderer(&ChromedpConfig{Logger: zap.NewNop()})
	require.NoError(t, err)
	defer r.Close()

	_, err = r.RenderPDF(context.Background(), "   ")

	var re *RenderError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)
}

func TestRenderPDF_AfterClose(t *testing.T) {
	r, err := NewChromedpRenderer(nil)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	_, err = r.RenderPDF(context.Background(), "<p>slip</p>")

	var re *RenderError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, ErrCodeClosed, re.Code)
}

func TestRenderError(t *testing.T) {
	cause := errors.New("boom")
	err := NewRenderError(ErrCodeRenderFailed, "failed", cause)
	assert.Equal(t, "failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed", NewRenderError(ErrCodeRenderFailed, "failed", nil).Error())
}
