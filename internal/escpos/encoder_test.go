package escpos

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCmdBytes(t *testing.T) {
	assert.Equal(t, []byte{0x1B, 0x40}, CmdInit())
	assert.Equal(t, []byte{0x1B, 0x64, 0x03}, CmdFeed(3))
	assert.Equal(t, []byte{0x1B, 0x45, 0x01}, CmdBold(true))
	assert.Equal(t, []byte{0x1B, 0x45, 0x00}, CmdBold(false))
	assert.Equal(t, []byte{0x1B, 0x2D, 0x02}, CmdUnderline(UnderlineThick))
	assert.Equal(t, []byte{0x1B, 0x61, 0x01}, CmdAlign(AlignCenter))
	assert.Equal(t, []byte{0x1D, 0x56, 0x00}, CmdCut(false))
	assert.Equal(t, []byte{0x1D, 0x56, 0x01}, CmdCut(true))
}

func TestCmdSizePacking(t *testing.T) {
	// 1x1 packs to zero
	assert.Equal(t, []byte{0x1D, 0x21, 0x00}, CmdSize(1, 1))
	// 2x3: width high nibble, height low nibble, both zero based
	assert.Equal(t, []byte{0x1D, 0x21, 0x12}, CmdSize(2, 3))
	// out of range multipliers clamp to [1,8]
	assert.Equal(t, []byte{0x1D, 0x21, 0x77}, CmdSize(99, 99))
	assert.Equal(t, []byte{0x1D, 0x21, 0x00}, CmdSize(0, -4))
}

func TestCmdDrawerKickClamping(t *testing.T) {
	// 120ms/240ms convert to 60/120 two-ms units
	assert.Equal(t, []byte{0x1B, 0x70, 0x00, 60, 120}, CmdDrawerKick(DrawerPin2, 120, 240))
	// absurd durations clamp to the 255 unit ceiling
	assert.Equal(t, []byte{0x1B, 0x70, 0x00, 255, 255}, CmdDrawerKick(DrawerPin2, 10000, 99999))
	// pin outside the connector range clamps
	kick := CmdDrawerKick(42, 100, 100)
	assert.Equal(t, byte(DrawerPin5), kick[2])
}

func TestBuildReceiptCopiesClamped(t *testing.T) {
	one := BuildReceipt(ReceiptJob{Content: "x", Copies: 0})
	assert.Equal(t, 1, bytes.Count(one, CmdInit()))

	five := BuildReceipt(ReceiptJob{Content: "x", Copies: 99})
	assert.Equal(t, 5, bytes.Count(five, CmdInit()))
}

func TestBuildReceiptStream(t *testing.T) {
	out := BuildReceipt(ReceiptJob{
		Content:       "TOKO MAJU\nTotal: 15.000",
		Copies:        2,
		Cut:           true,
		FeedBeforeCut: 1,
	})

	// two copies, each init + two lines + feed + cut
	assert.Equal(t, 2, bytes.Count(out, CmdInit()))
	assert.Equal(t, 2, bytes.Count(out, append([]byte("TOKO MAJU"), 0x0A)))
	assert.Equal(t, 2, bytes.Count(out, append([]byte("Total: 15.000"), 0x0A)))
	assert.Equal(t, 2, bytes.Count(out, []byte{0x1B, 0x64, 0x01}))
	assert.Equal(t, 2, bytes.Count(out, []byte{0x1D, 0x56, 0x00}))

	// no drawer kick requested, none emitted
	assert.NotContains(t, string(out), string([]byte{0x1B, 0x70}))
}

func TestBuildReceiptSingleDrawerKick(t *testing.T) {
	out := BuildReceipt(ReceiptJob{
		Content:    "x",
		Copies:     3,
		OpenDrawer: true,
	})
	// one kick regardless of copies, after the last copy
	kick := CmdDrawerKick(DrawerPin2, 120, 240)
	assert.Equal(t, 1, bytes.Count(out, kick))
	assert.True(t, bytes.HasSuffix(out, kick))
}

func TestBuildReceiptNoCutWithoutFlag(t *testing.T) {
	out := BuildReceipt(ReceiptJob{Content: "x"})
	assert.Zero(t, bytes.Count(out, []byte{0x1D, 0x56, 0x00}))
	// default feed of 3 is applied
	assert.Equal(t, 1, bytes.Count(out, []byte{0x1B, 0x64, 0x03}))
}

func TestBuildDrawerKick(t *testing.T) {
	out := BuildDrawerKick()
	assert.Equal(t, append(CmdInit(), CmdDrawerKick(DrawerPin2, 120, 240)...), out)
}

func TestBuildReceiptQRCode(t *testing.T) {
	out := BuildReceipt(ReceiptJob{Content: "x", QRData: "https://r.example/abc"})
	assert.Equal(t, 1, bytes.Count(out, CmdQRCode("https://r.example/abc")))

	// pL/pH length field covers payload plus the 3 header bytes
	qr := CmdQRCode("ab")
	store := []byte{0x1D, 0x28, 0x6B, 0x05, 0x00, 0x31, 0x50, 0x30, 'a', 'b'}
	assert.Equal(t, 1, bytes.Count(qr, store))
}

func TestEncodeLineFallback(t *testing.T) {
	// unknown codepage passes UTF-8 through untouched
	assert.Equal(t, "Kopi Susu", encodeLine("Kopi Susu", "cp999"))
	// cp437 maps plain ASCII to itself
	assert.Equal(t, "Receipt", encodeLine("Receipt", "cp437"))
}
