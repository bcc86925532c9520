package printing

import (
	"context"
	"runtime"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compazz/posbridge/internal/domain"
)

type fakeStrategy struct {
	mode     string
	err      error
	attempts int
}

func (f *fakeStrategy) Mode() string { return f.mode }

func (f *fakeStrategy) Attempt(_ context.Context, _ *Job) error {
	f.attempts++
	return f.err
}

func TestDispatchFirstSuccessWins(t *testing.T) {
	first := &fakeStrategy{mode: domain.PrintModeNetwork, err: errNotApplicable}
	second := &fakeStrategy{mode: domain.PrintModeSpooler}
	third := &fakeStrategy{mode: domain.PrintModeSilent}

	d := NewDispatcherWithStrategies(first, second, third)
	result := d.Dispatch(context.Background(), &Job{Target: "EPSON"})

	require.True(t, result.Success)
	assert.Equal(t, domain.PrintModeSpooler, result.Mode)
	assert.Equal(t, 1, second.attempts)
	assert.Zero(t, third.attempts, "later strategies must be skipped after a success")
}

func TestDispatchFallsThroughFailures(t *testing.T) {
	first := &fakeStrategy{mode: domain.PrintModeNetwork, err: errors.New("connection refused")}
	second := &fakeStrategy{mode: domain.PrintModeSilent}

	d := NewDispatcherWithStrategies(first, second)
	result := d.Dispatch(context.Background(), &Job{Target: "10.0.0.5"})

	require.True(t, result.Success)
	assert.Equal(t, domain.PrintModeSilent, result.Mode)
}

func TestDispatchAllFailed(t *testing.T) {
	first := &fakeStrategy{mode: domain.PrintModeNetwork, err: errors.New("connection refused")}
	second := &fakeStrategy{mode: domain.PrintModeSilent, err: errors.New("no helper")}

	d := NewDispatcherWithStrategies(first, second)
	result := d.Dispatch(context.Background(), &Job{Target: "10.0.0.5"})

	require.False(t, result.Success)
	assert.Equal(t, domain.PrintModeNone, result.Mode)
	assert.Equal(t, "no helper", result.Error)
}

func TestDispatchNothingApplicable(t *testing.T) {
	only := &fakeStrategy{mode: domain.PrintModeDevice, err: errNotApplicable}

	d := NewDispatcherWithStrategies(only)
	result := d.Dispatch(context.Background(), &Job{Target: "weird"})

	require.False(t, result.Success)
	assert.Equal(t, domain.PrintModeNone, result.Mode)
	assert.Contains(t, result.Error, "no printer available")
}

func TestDispatchDrawerOnlySkipsSilent(t *testing.T) {
	silent := &fakeStrategy{mode: domain.PrintModeSilent}

	d := NewDispatcherWithStrategies(silent)
	result := d.Dispatch(context.Background(), &Job{Target: "", DrawerOnly: true})

	require.False(t, result.Success)
	assert.Zero(t, silent.attempts, "an HTML render cannot open a drawer")
}

func TestParseNetworkTarget(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"192.168.1.50", "192.168.1.50:9100", true},
		{"192.168.1.50:9101", "192.168.1.50:9101", true},
		{"10.0.0.1:1", "10.0.0.1:1", true},
		{"", "", false},
		{"EPSON-TM20", "", false},
		{"192.168.1.50:0", "", false},
		{"192.168.1.50:70000", "", false},
		{"192.168.1.50:abc", "", false},
		{"fe80::1", "", false},
		{"/dev/usb/lp0", "", false},
	}
	for _, tc := range cases {
		got, ok := parseNetworkTarget(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseDeviceTarget(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"/dev/usb/lp0", "/dev/usb/lp0", true},
		{`\\.\COM3`, `\\.\COM3`, true},
		{"COM3", `\\.\COM3`, true},
		{"COM12", `\\.\COM12`, true},
		{"COM", "", false},
		{"COMPAZZ-Front", "", false},
		{"COM3X", "", false},
		{"EPSON-TM20", "", false},
		{"192.168.1.50", "", false},
	}
	for _, tc := range cases {
		got, ok := parseDeviceTarget(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestSpoolAcceptsComPrefixedQueueName(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("lp strategy is unix only")
	}
	// A queue merely named with a COM prefix is not a serial port and must
	// stay eligible for spooling instead of dropping to the silent renderer.
	job := &Job{Target: "COMPAZZ-Front", Payload: []byte{0x1B, 0x40}}
	err := (lpStrategy{}).Attempt(context.Background(), job)
	assert.NotErrorIs(t, err, errNotApplicable)
}
