package printing

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/compazz/posbridge/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const listTimeout = 5 * time.Second

// Directory enumerates the printers the OS knows about. Results are not
// cached; printers come and go with USB plugs and VPN state, so each
// call asks the OS again. Concurrent callers are collapsed into one
// underlying enumeration.
type Directory struct {
	group singleflight.Group
}

func NewDirectory() *Directory {
	return &Directory{}
}

// List returns the installed printers, flagging the system default. A
// failed enumeration logs and returns an empty list; delivery strategies
// that need no directory still work.
func (d *Directory) List(ctx context.Context) []domain.PrinterInfo {
	v, err, _ := d.group.Do("list", func() (interface{}, error) {
		cctx, cancel := context.WithTimeout(ctx, listTimeout)
		defer cancel()
		if runtime.GOOS == "windows" {
			return listWindows(cctx)
		}
		return listUnix(cctx)
	})
	if err != nil {
		zap.L().Warn("printer enumeration failed", zap.Error(err))
		return nil
	}
	return v.([]domain.PrinterInfo)
}

func listUnix(ctx context.Context) ([]domain.PrinterInfo, error) {
	out, err := exec.CommandContext(ctx, "lpstat", "-p", "-d").Output()
	if err != nil {
		return nil, err
	}
	return parseLpstat(string(out)), nil
}

// parseLpstat reads CUPS "lpstat -p -d" output:
//
//	printer EPSON-TM20 is idle.  enabled since ...
//	system default destination: EPSON-TM20
func parseLpstat(out string) []domain.PrinterInfo {
	var printers []domain.PrinterInfo
	var def string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if name, ok := strings.CutPrefix(line, "printer "); ok {
			if i := strings.IndexByte(name, ' '); i > 0 {
				name = name[:i]
			}
			if name != "" {
				printers = append(printers, domain.PrinterInfo{Name: name})
			}
			continue
		}
		if name, ok := strings.CutPrefix(line, "system default destination: "); ok {
			def = strings.TrimSpace(name)
		}
	}
	for i := range printers {
		if printers[i].Name == def {
			printers[i].Default = true
		}
	}
	return printers
}

func listWindows(ctx context.Context) ([]domain.PrinterInfo, error) {
	cmd := exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command",
		"Get-CimInstance Win32_Printer | Select-Object Name, Default | ConvertTo-Json -Compress")
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}
	return parsePrinterJSON(out)
}

// parsePrinterJSON handles ConvertTo-Json emitting a bare object when
// exactly one printer is installed and an array otherwise.
func parsePrinterJSON(out []byte) ([]domain.PrinterInfo, error) {
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return nil, nil
	}
	type entry struct {
		Name    string `json:"Name"`
		Default bool   `json:"Default"`
	}
	var entries []entry
	if strings.HasPrefix(trimmed, "[") {
		if err := json.UnmarshalFromString(trimmed, &entries); err != nil {
			return nil, err
		}
	} else {
		var one entry
		if err := json.UnmarshalFromString(trimmed, &one); err != nil {
			return nil, err
		}
		entries = append(entries, one)
	}

	printers := make([]domain.PrinterInfo, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		printers = append(printers, domain.PrinterInfo{Name: e.Name, Default: e.Default})
	}
	return printers, nil
}
