package domain

// Print modes reported in PrintResult. "none" means every strategy was
// exhausted without a success.
const (
	PrintModeNetwork = "network"
	PrintModeSpooler = "spooler"
	PrintModeLp      = "lp"
	PrintModeDevice  = "device"
	PrintModeSilent  = "silent"
	PrintModeNone    = "none"
)

// PrintRequest is the logical job handed over by the POS UI.
type PrintRequest struct {
	Content       string `json:"content"`
	Copies        int    `json:"copies"`
	PrinterName   string `json:"printer_name"`
	Cut           bool   `json:"cut"`
	OpenDrawer    bool   `json:"open_drawer"`
	FeedBeforeCut int    `json:"feed_before_cut"`
	// QRData optionally prints a QR symbol after the receipt text.
	QRData string `json:"qr_data"`
}

// PrintResult always resolves; delivery failures are carried in Error
// instead of surfacing as Go errors so the UI can show the last reason.
type PrintResult struct {
	Success bool   `json:"success"`
	Mode    string `json:"mode"`
	Error   string `json:"error,omitempty"`
}

// PrinterInfo is one OS visible print queue.
type PrinterInfo struct {
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

// PrinterStatus is the result of an SNMP health probe against a network
// printer. Unreachable is a status, not an error.
type PrinterStatus struct {
	Target    string `json:"target"`
	Reachable bool   `json:"reachable"`
	State     string `json:"state"`
	Detail    string `json:"detail,omitempty"`
}
