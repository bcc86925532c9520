package printing

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/pkg/errors"

	"github.com/compazz/posbridge/internal/domain"
)

const spoolTimeout = 10 * time.Second

// newSpoolStrategies returns the raw-spool strategy for the running
// platform. Each is a Strategy so deployments can still reorder or stub
// them; only construction looks at the OS.
func newSpoolStrategies() []Strategy {
	if runtime.GOOS == "windows" {
		return []Strategy{&spoolerStrategy{}}
	}
	return []Strategy{&lpStrategy{}}
}

// writeSpoolFile stages the payload in a temp file for command-line
// spool utilities that only accept file arguments.
func writeSpoolFile(payload []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "posbridge-spool-*.bin")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	cleanup := func() { os.Remove(path) }
	if _, err := f.Write(payload); err != nil {
		f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

// spoolerStrategy sends a raw job through the Windows spooler. Primary
// path is the print utility; if that fails the job is copied in binary
// mode to the locally shared queue, the documented fallback for raw
// ESC/POS on Windows.
type spoolerStrategy struct{}

func (spoolerStrategy) Mode() string { return domain.PrintModeSpooler }

func (spoolerStrategy) Attempt(ctx context.Context, job *Job) error {
	if runtime.GOOS != "windows" || job.Target == "" {
		return errNotApplicable
	}
	// Network/device style identifiers belong to earlier strategies.
	if _, ok := parseNetworkTarget(job.Target); ok {
		return errNotApplicable
	}
	if _, ok := parseDeviceTarget(job.Target); ok {
		return errNotApplicable
	}
	return spoolWindows(ctx, job.Target, job.Payload)
}

func spoolWindows(ctx context.Context, printer string, payload []byte) error {
	path, cleanup, err := writeSpoolFile(payload)
	if err != nil {
		return errors.Errorf("spool staging failed: %v", err)
	}
	defer cleanup()

	cctx, cancel := context.WithTimeout(ctx, spoolTimeout)
	defer cancel()

	primary := exec.CommandContext(cctx, "cmd", "/c", "print", fmt.Sprintf("/d:%s", printer), path)
	if err := primary.Run(); err == nil {
		return nil
	}

	fallback := exec.CommandContext(cctx, "cmd", "/c", "copy", "/b", path, `\\localhost\`+printer)
	if out, err := fallback.CombinedOutput(); err != nil {
		return errors.Errorf("windows spool to %q failed: %v (%s)", printer, err, string(out))
	}
	return nil
}

// lpStrategy sends a raw job through CUPS on Linux/macOS: lp first, lpr
// as the fallback for systems that only ship the BSD tools.
type lpStrategy struct{}

func (lpStrategy) Mode() string { return domain.PrintModeLp }

func (lpStrategy) Attempt(ctx context.Context, job *Job) error {
	if runtime.GOOS == "windows" || job.Target == "" {
		return errNotApplicable
	}
	if _, ok := parseNetworkTarget(job.Target); ok {
		return errNotApplicable
	}
	if _, ok := parseDeviceTarget(job.Target); ok {
		return errNotApplicable
	}
	return spoolUnix(ctx, job.Target, job.Payload)
}

func spoolUnix(ctx context.Context, printer string, payload []byte) error {
	path, cleanup, err := writeSpoolFile(payload)
	if err != nil {
		return errors.Errorf("spool staging failed: %v", err)
	}
	defer cleanup()

	cctx, cancel := context.WithTimeout(ctx, spoolTimeout)
	defer cancel()

	// -o raw hands CUPS the bytes untouched; no filters, no reformatting.
	primary := exec.CommandContext(cctx, "lp", "-d", printer, "-o", "raw", path)
	if err := primary.Run(); err == nil {
		return nil
	}

	fallback := exec.CommandContext(cctx, "lpr", "-P", printer, "-l", path)
	if out, err := fallback.CombinedOutput(); err != nil {
		return errors.Errorf("lp spool to %q failed: %v (%s)", printer, err, string(out))
	}
	return nil
}

// defaultRetryStrategy only fires when the request named no printer at
// all: it re-attempts the spool strategies against the configured
// default, or failing that, whatever the OS reports as default.
type defaultRetryStrategy struct {
	dir        *Directory
	configured string
	inner      []Strategy
}

func (defaultRetryStrategy) Mode() string { return domain.PrintModeSpooler }

func (s *defaultRetryStrategy) Attempt(ctx context.Context, job *Job) error {
	if job.Target != "" {
		return errNotApplicable
	}

	name := s.configured
	if name == "" && s.dir != nil {
		for _, p := range s.dir.List(ctx) {
			if p.Default {
				name = p.Name
				break
			}
		}
	}
	if name == "" {
		return errors.New("no printer name given and no default printer available")
	}

	retry := *job
	retry.Target = name
	var lastErr error
	for _, st := range s.inner {
		err := st.Attempt(ctx, &retry)
		if err == nil {
			return nil
		}
		if errors.Is(err, errNotApplicable) {
			continue
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.Errorf("default printer %q not reachable by any spool strategy", name)
	}
	return lastErr
}
