package mgmt

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultPort is the conventional port of the management API.
const DefaultPort = "15672"

// Resolve probes a host[:port] address and returns the base URL actually
// serving the management API. Brokers behind TLS terminators or proxies
// answer the initial plain-HTTP probe with a redirect; the final URL after
// redirects wins.
func Resolve(ctx context.Context, addr string) (string, error) {
	if strings.Contains(addr, "://") {
		return strings.TrimRight(addr, "/"), nil
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, DefaultPort)
	}

	probe := "http://" + addr + "/api/overview"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probe, nil)
	if err != nil {
		return "", err
	}

	hc := &http.Client{Timeout: 10 * time.Second}
	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("broker at %s is unreachable: %w", addr, err)
	}
	defer resp.Body.Close()

	// resp.Request points at the last request in the redirect chain.
	final := resp.Request.URL
	base := final.Scheme + "://" + final.Host
	if base != "http://"+addr {
		log.Debug().Str("addr", addr).Str("base", base).Msg("Broker address redirected")
	}
	return base, nil
}
