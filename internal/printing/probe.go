package printing

import (
	"context"
	"fmt"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/pkg/errors"

	"github.com/compazz/posbridge/internal/domain"
)

// Printer-MIB objects every network receipt printer with an SNMP agent
// exposes.
const (
	oidHrDeviceStatus  = ".1.3.6.1.2.1.25.3.2.1.5.1"
	oidHrPrinterStatus = ".1.3.6.1.2.1.25.3.5.1.1.1"
)

var deviceStatusNames = map[int]string{
	1: "unknown",
	2: "running",
	3: "warning",
	4: "testing",
	5: "down",
}

var printerStatusNames = map[int]string{
	1: "other",
	2: "unknown",
	3: "idle",
	4: "printing",
	5: "warmup",
}

// ProbePrinter asks a network printer for its device and engine state
// over SNMP. Probing is advisory: most dispatch paths print blind, this
// backs the status endpoint the UI polls for the printer badge.
func ProbePrinter(ctx context.Context, host string) domain.PrinterStatus {
	status := domain.PrinterStatus{Target: host}

	snmp := &gosnmp.GoSNMP{
		Target:    host,
		Port:      161,
		Community: "public",
		Version:   gosnmp.Version2c,
		Timeout:   2 * time.Second,
		Retries:   1,
		Context:   ctx,
	}
	if err := snmp.Connect(); err != nil {
		status.Detail = errors.Errorf("snmp connect: %v", err).Error()
		return status
	}
	defer snmp.Conn.Close()

	res, err := snmp.Get([]string{oidHrDeviceStatus, oidHrPrinterStatus})
	if err != nil {
		status.Detail = errors.Errorf("snmp get: %v", err).Error()
		return status
	}

	status.Reachable = true
	for _, v := range res.Variables {
		n, ok := toInt(v.Value)
		if !ok {
			continue
		}
		switch v.Name {
		case oidHrDeviceStatus:
			status.Detail = deviceStatusNames[n]
			if status.Detail == "" {
				status.Detail = fmt.Sprintf("device status %d", n)
			}
		case oidHrPrinterStatus:
			status.State = printerStatusNames[n]
			if status.State == "" {
				status.State = fmt.Sprintf("printer status %d", n)
			}
		}
	}
	return status
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case uint:
		return int(n), true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	}
	return 0, false
}
