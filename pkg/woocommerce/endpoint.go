package woocommerce

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// ErrPrivateEndpoint is returned for shopper-supplied endpoints that are not
// https or that point at loopback, private or link-local addresses.
var ErrPrivateEndpoint = errors.New("woocommerce endpoint must be a public https url")

var blockedHostSuffixes = []string{".localhost", ".local", ".internal", ".lan", ".home.arpa"}

// sharedAddressSpace is the carrier-grade NAT range (RFC 6598).
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// CheckPublicEndpoint validates an API url supplied by a shopper session. It
// only inspects the url; the resolved address is checked again at dial time.
func CheckPublicEndpoint(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPrivateEndpoint, err)
	}
	if !strings.EqualFold(u.Scheme, "https") || u.User != nil {
		return ErrPrivateEndpoint
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if host == "" || host == "localhost" {
		return ErrPrivateEndpoint
	}
	for _, suffix := range blockedHostSuffixes {
		if strings.HasSuffix(host, suffix) {
			return ErrPrivateEndpoint
		}
	}
	if addr, err := netip.ParseAddr(host); err == nil && !publicAddr(addr) {
		return ErrPrivateEndpoint
	}
	if !strings.Contains(host, ".") {
		// single-label names resolve through the local search domain
		return ErrPrivateEndpoint
	}
	return nil
}

func publicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid(),
		addr.IsUnspecified(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(),
		addr.IsMulticast(),
		sharedAddressSpace.Contains(addr):
		return false
	}
	return true
}

// guardDial refuses connections to non-public addresses after DNS resolution.
func guardDial(_, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPrivateEndpoint, err)
	}
	if !publicAddr(ap.Addr()) {
		return fmt.Errorf("%w: %s", ErrPrivateEndpoint, ap.Addr())
	}
	return nil
}

// publicOnlyClient returns a copy of base whose transport can only reach
// public addresses and does not follow redirects.
func publicOnlyClient(base *http.Client) *http.Client {
	dialer := &net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second, Control: guardDial}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialer.DialContext(ctx, network, addr)
	}

	client := &http.Client{Timeout: defaultTimeout}
	if base != nil && base.Timeout > 0 {
		client.Timeout = base.Timeout
	}
	client.Transport = transport
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return client
}
