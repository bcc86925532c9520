package printing

import (
	"context"
	"html"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/compazz/posbridge/internal/domain"
)

// Renderer is the "render HTML to a physical printer" capability. The
// core fallback logic (build HTML, invoke, enforce the 12s ceiling) is
// platform neutral; only the Render implementation differs per host.
type Renderer interface {
	Render(ctx context.Context, htmlPath, printer string) error
}

// ExecRenderer shells out to a configured helper, typically a headless
// browser or the host shell's silent print hook. {file} and {printer}
// placeholders in the command template are expanded per job.
type ExecRenderer struct {
	Command string
}

func (r *ExecRenderer) Render(ctx context.Context, htmlPath, printer string) error {
	if r == nil || r.Command == "" {
		return errors.New("no silent render helper configured")
	}
	expanded := strings.ReplaceAll(r.Command, "{file}", htmlPath)
	expanded = strings.ReplaceAll(expanded, "{printer}", printer)
	args := strings.Fields(expanded)
	if len(args) == 0 {
		return errors.New("silent render helper command is empty")
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return errors.Errorf("silent render helper failed: %v (%s)", err, string(out))
	}
	return nil
}

// silentStrategy is the last resort: the receipt text is rendered as a
// monospace HTML page and handed to the host's silent print capability.
// It always resolves within silentTimeout even if the helper hangs.
type silentStrategy struct {
	renderer Renderer
}

func (silentStrategy) Mode() string { return domain.PrintModeSilent }

func (s *silentStrategy) Attempt(ctx context.Context, job *Job) error {
	if s.renderer == nil {
		return errors.New("silent render not available on this host")
	}

	f, err := os.CreateTemp("", "posbridge-receipt-*.html")
	if err != nil {
		return errors.Errorf("silent render staging failed: %v", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.WriteString(receiptHTML(job.Content)); err != nil {
		f.Close()
		return errors.Errorf("silent render staging failed: %v", err)
	}
	if err := f.Close(); err != nil {
		return errors.Errorf("silent render staging failed: %v", err)
	}

	cctx, cancel := context.WithTimeout(ctx, silentTimeout)
	defer cancel()
	if err := s.renderer.Render(cctx, path, job.Target); err != nil {
		return err
	}
	return nil
}

// receiptHTML wraps plain receipt text in the 80mm monospace layout the
// silent fallback prints. Content is escaped; receipts carry arbitrary
// product names.
func receiptHTML(content string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><style>`)
	b.WriteString(`body{font-family:monospace;font-size:12px;width:72mm;margin:0;padding:2mm;}`)
	b.WriteString(`pre{margin:0;white-space:pre-wrap;word-break:break-all;}`)
	b.WriteString(`@media print{@page{margin:0;size:80mm auto;}}`)
	b.WriteString(`</style></head><body><pre>`)
	b.WriteString(html.EscapeString(content))
	b.WriteString(`</pre></body></html>`)
	return b.String()
}
