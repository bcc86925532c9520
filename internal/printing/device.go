package printing

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/compazz/posbridge/internal/domain"
)

// deviceStrategy writes the payload straight to a device node: /dev/usb/lp0
// style paths on Unix, \\.\COMn serial handles on Windows. A bare COMn
// name is normalized to the \\.\ form.
type deviceStrategy struct{}

func (deviceStrategy) Mode() string { return domain.PrintModeDevice }

func (deviceStrategy) Attempt(_ context.Context, job *Job) error {
	path, ok := parseDeviceTarget(job.Target)
	if !ok {
		return errNotApplicable
	}
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return errors.Errorf("device print to %s failed: %v", path, err)
	}
	defer f.Close()

	// One write call: splitting the stream introduces inter-command
	// delays on slow serial printers.
	if _, err := f.Write(job.Payload); err != nil {
		return errors.Errorf("device print to %s failed: %v", path, err)
	}
	return nil
}

func parseDeviceTarget(target string) (string, bool) {
	switch {
	case strings.HasPrefix(target, "/dev/"):
		return target, true
	case strings.HasPrefix(target, `\\.\`):
		return target, true
	case isComPort(target):
		return `\\.\` + target, true
	}
	return "", false
}

// isComPort matches COM1..COM255 only. Queue names that merely start
// with "COM" must stay eligible for the spool strategies.
func isComPort(target string) bool {
	if !strings.HasPrefix(target, "COM") || len(target) == 3 {
		return false
	}
	n, err := strconv.Atoi(target[3:])
	return err == nil && n > 0
}
