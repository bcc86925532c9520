// Package escpos builds raw ESC/POS command streams for thermal receipt
// printers. Everything here is pure byte assembly: no I/O, no OS calls.
// Every numeric parameter is clamped before encoding because thermal
// printers have no defined behavior for out-of-range ESC/POS values.
package escpos

import (
	"strings"
)

// Underline weights accepted by CmdUnderline.
const (
	UnderlineOff   = 0
	UnderlineThin  = 1
	UnderlineThick = 2
)

// Alignment values accepted by CmdAlign.
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Drawer connector pins for CmdDrawerKick.
const (
	DrawerPin2 = 0
	DrawerPin5 = 1
)

const (
	maxCopies      = 5
	defaultFeed    = 3
	drawerUnitMs   = 2
	maxDrawerUnits = 255
)

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// CmdInit resets the printer to its power-on state (ESC @).
func CmdInit() []byte {
	return []byte{0x1B, 0x40}
}

// CmdText emits raw UTF-8 text without a trailing line feed.
func CmdText(text string) []byte {
	return []byte(text)
}

// CmdTextLn emits a line of UTF-8 text followed by LF.
func CmdTextLn(text string) []byte {
	return append([]byte(text), 0x0A)
}

// CmdFeed advances n blank lines (ESC d). n is clamped to [0,255].
func CmdFeed(n int) []byte {
	return []byte{0x1B, 0x64, byte(clampInt(n, 0, 255))}
}

// CmdBold toggles emphasized mode (ESC E).
func CmdBold(on bool) []byte {
	if on {
		return []byte{0x1B, 0x45, 0x01}
	}
	return []byte{0x1B, 0x45, 0x00}
}

// CmdUnderline sets underline weight (ESC -): off, thin or thick.
func CmdUnderline(weight int) []byte {
	return []byte{0x1B, 0x2D, byte(clampInt(weight, UnderlineOff, UnderlineThick))}
}

// CmdAlign sets horizontal alignment (ESC a).
func CmdAlign(mode int) []byte {
	return []byte{0x1B, 0x61, byte(clampInt(mode, AlignLeft, AlignRight))}
}

// CmdSize sets character magnification (GS !). Width and height
// multipliers are clamped to [1,8] and packed zero-based into one byte:
// width in the high nibble, height in the low nibble.
func CmdSize(width, height int) []byte {
	w := clampInt(width, 1, 8) - 1
	h := clampInt(height, 1, 8) - 1
	return []byte{0x1D, 0x21, byte(w<<4 | h)}
}

// CmdCut cuts the paper (GS V). Partial cuts are not supported by all
// hardware; choosing partial is the caller's responsibility.
func CmdCut(partial bool) []byte {
	if partial {
		return []byte{0x1D, 0x56, 0x01}
	}
	return []byte{0x1D, 0x56, 0x00}
}

// CmdDrawerKick pulses a cash drawer solenoid (ESC p). Pin selects the
// physical connector pin; pulse durations are converted to 2ms hardware
// units and clamped to [0,255], so the longest pulse is ~510ms.
func CmdDrawerKick(pin, onMs, offMs int) []byte {
	p := clampInt(pin, DrawerPin2, DrawerPin5)
	on := clampInt(onMs/drawerUnitMs, 0, maxDrawerUnits)
	off := clampInt(offMs/drawerUnitMs, 0, maxDrawerUnits)
	return []byte{0x1B, 0x70, byte(p), byte(on), byte(off)}
}

// ReceiptJob describes one logical print job before encoding.
type ReceiptJob struct {
	Content       string
	Copies        int
	Cut           bool
	OpenDrawer    bool
	FeedBeforeCut int
	// QRData, when set, prints a QR symbol after the text of each copy.
	// Typically the e-receipt lookup URL.
	QRData string
	// Codepage optionally re-encodes text for printers that do not
	// accept UTF-8; empty means raw UTF-8 passthrough.
	Codepage string
}

// BuildReceipt assembles the full multi-copy byte stream: per copy an
// init, the content lines, a feed and an optional cut; a single drawer
// kick after all copies if requested. Copies is clamped to [1,5] so a
// malformed request cannot burn through a roll of paper.
func BuildReceipt(job ReceiptJob) []byte {
	copies := clampInt(job.Copies, 1, maxCopies)
	feed := job.FeedBeforeCut
	if feed <= 0 {
		feed = defaultFeed
	}

	lines := strings.Split(job.Content, "\n")
	var buf []byte
	for i := 0; i < copies; i++ {
		buf = append(buf, CmdInit()...)
		for _, line := range lines {
			buf = append(buf, CmdTextLn(encodeLine(line, job.Codepage))...)
		}
		if job.QRData != "" {
			buf = append(buf, CmdAlign(AlignCenter)...)
			buf = append(buf, CmdQRCode(job.QRData)...)
			buf = append(buf, CmdAlign(AlignLeft)...)
		}
		buf = append(buf, CmdFeed(feed)...)
		if job.Cut {
			buf = append(buf, CmdCut(false)...)
		}
	}
	if job.OpenDrawer {
		buf = append(buf, CmdDrawerKick(DrawerPin2, 120, 240)...)
	}
	return buf
}

// BuildDrawerKick is the payload for a drawer-only job: init plus kick,
// nothing printed.
func BuildDrawerKick() []byte {
	buf := append([]byte{}, CmdInit()...)
	return append(buf, CmdDrawerKick(DrawerPin2, 120, 240)...)
}
