package research

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const maxPageBytes = 2 << 20

// Client fetches HTML pages with a shared request rate
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

// NewClient creates a page client allowing requestsPerSecond fetches. It
// only connects to public addresses, including after redirects.
func NewClient(requestsPerSecond int) *Client {
	return newClient(requestsPerSecond, publicAddressOnly)
}

func newClient(requestsPerSecond int, control func(network, address string, c syscall.RawConn) error) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}

	dialer := &net.Dialer{
		Timeout: 5 * time.Second,
		Control: control,
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext:     dialer.DialContext,
				MaxIdleConns:    10,
				IdleConnTimeout: 30 * time.Second,
			},
		},
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		userAgent: "Mozilla/5.0 (compatible; BlueAlly-ROI/1.0)",
	}
}

// Get performs a rate-limited GET and parses the body as HTML
func (c *Client) Get(ctx context.Context, url string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// publicAddressOnly refuses connections to loopback, private, link-local
// and unspecified addresses. It runs after name resolution.
func publicAddressOnly(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	addr = addr.Unmap()
	if !addr.IsGlobalUnicast() || addr.IsPrivate() || addr.IsLoopback() ||
		addr.IsLinkLocalUnicast() || addr.IsUnspecified() {
		return fmt.Errorf("refusing to connect to non-public address %s", addr)
	}
	return nil
}

// Close releases idle connections
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
