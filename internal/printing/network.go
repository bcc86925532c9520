package printing

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/c-robinson/iplib"
	"github.com/pkg/errors"

	"github.com/compazz/posbridge/internal/domain"
)

// defaultRawPort is the JetDirect raw printing port virtually every
// network receipt printer listens on.
const defaultRawPort = 9100

// networkStrategy handles targets of the form <IPv4>[:port]: open a raw
// TCP socket, write the whole payload, close. The 5 second deadline
// covers both connect and write so a hung printer never stalls the till.
type networkStrategy struct{}

func (networkStrategy) Mode() string { return domain.PrintModeNetwork }

func (networkStrategy) Attempt(ctx context.Context, job *Job) error {
	addr, ok := parseNetworkTarget(job.Target)
	if !ok {
		return errNotApplicable
	}

	dialer := net.Dialer{Timeout: networkTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Errorf("network print to %s failed: %v", addr, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(networkTimeout))
	if _, err := conn.Write(job.Payload); err != nil {
		return errors.Errorf("network print to %s failed: %v", addr, err)
	}
	return nil
}

// parseNetworkTarget reports whether the target identifier is an IPv4
// address with an optional port, normalizing to host:port.
func parseNetworkTarget(target string) (string, bool) {
	if target == "" {
		return "", false
	}
	host := target
	port := defaultRawPort
	if i := strings.LastIndex(target, ":"); i >= 0 {
		p, err := strconv.Atoi(target[i+1:])
		if err != nil || p < 1 || p > 65535 {
			return "", false
		}
		host = target[:i]
		port = p
	}
	ip := net.ParseIP(host)
	if ip == nil || iplib.EffectiveVersion(ip) != 4 {
		return "", false
	}
	return net.JoinHostPort(host, strconv.Itoa(port)), true
}
