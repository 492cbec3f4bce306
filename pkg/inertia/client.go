package inertia

import (
	"context"
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/bizdesk/pkg/datatable"
)

var (
	ErrNoPage           = errors.New("inertia: no page loaded")
	ErrNotInertia       = errors.New("inertia: response is not a protocol page")
	ErrUnexpectedStatus = errors.New("inertia: unexpected status")
)

// Client performs visits against a server speaking the protocol and holds
// the page the last applied response produced. Visits run in the background;
// a response is applied only if no later visit has been applied already.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *logrus.Entry

	onSuccess func(Page)
	onError   func(error)
	header    http.Header

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	page    Page
	issued  uint64
	applied uint64
}

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

func WithLogger(logger *logrus.Entry) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// OnSuccess is called with the page after each applied visit.
func OnSuccess(fn func(Page)) ClientOption {
	return func(c *Client) {
		c.onSuccess = fn
	}
}

// OnError is called when a visit fails.
func OnError(fn func(error)) ClientOption {
	return func(c *Client) {
		c.onError = fn
	}
}

// WithHeader sends key: value with every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.header.Set(key, value)
	}
}

func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("inertia: base url %q must be absolute", baseURL)
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		base:   base,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logrus.WithField("component", "inertia-client"),
		header: http.Header{},
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Page returns a copy of the current page.
func (c *Client) Page() Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.page
	p.Props = maps.Clone(c.page.Props)
	return p
}

// Query is the query of the current page URL.
func (c *Client) Query() url.Values {
	c.mu.Lock()
	raw := c.page.URL
	c.mu.Unlock()
	u, err := url.Parse(raw)
	if err != nil {
		return url.Values{}
	}
	return u.Query()
}

// Load performs a first load of path the way a browser would: it fetches
// the HTML shell and boots from the page embedded in it.
func (c *Client) Load(ctx context.Context, path string) (Page, error) {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	c.mu.Unlock()

	page, err := c.fetchShell(ctx, path)
	if err != nil {
		return Page{}, err
	}
	c.apply(seq, page, false)
	return page, nil
}

// Visit starts a visit to req and returns at once.
func (c *Client) Visit(req datatable.Request) {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	current := c.page.Component
	version := c.page.Version
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.visit(seq, req, current, version)
	}()
}

// Wait blocks until every started visit has finished.
func (c *Client) Wait() {
	c.wg.Wait()
}

// Close aborts outstanding visits and waits for them.
func (c *Client) Close() {
	c.cancel()
	c.wg.Wait()
}

func (c *Client) visit(seq uint64, req datatable.Request, component, version string) {
	logger := c.logger.WithFields(logrus.Fields{"href": req.Href(), "visit": seq})
	partial := len(req.Options.Only) > 0 && component != ""

	hreq, err := c.newRequest(c.ctx, req.Href())
	if err != nil {
		c.fail(logger, err)
		return
	}
	hreq.Header.Set(HeaderInertia, "true")
	hreq.Header.Set(HeaderVersion, version)
	hreq.Header.Set("Accept", "text/html, application/xhtml+xml")
	hreq.Header.Set("X-Requested-With", "XMLHttpRequest")
	if partial {
		hreq.Header.Set(HeaderPartialComponent, component)
		hreq.Header.Set(HeaderPartialData, strings.Join(req.Options.Only, ","))
	}

	resp, err := c.http.Do(hreq)
	if err != nil {
		c.fail(logger, errors.Wrap(err, "visit"))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		if location := resp.Header.Get(HeaderLocation); location != "" {
			logger.WithField("location", location).Info("asset version changed, reloading")
			page, err := c.fetchShell(c.ctx, location)
			if err != nil {
				c.fail(logger, err)
				return
			}
			c.apply(seq, page, false)
			return
		}
	}
	if resp.StatusCode != http.StatusOK {
		c.fail(logger, errors.Wrapf(ErrUnexpectedStatus, "visit %s: %d", req.Href(), resp.StatusCode))
		return
	}
	if resp.Header.Get(HeaderInertia) == "" {
		c.fail(logger, errors.Wrapf(ErrNotInertia, "visit %s", req.Href()))
		return
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		c.fail(logger, errors.Wrap(err, "decode page"))
		return
	}
	c.apply(seq, page, partial && req.Options.PreserveState && page.Component == component)
}

func (c *Client) fetchShell(ctx context.Context, path string) (Page, error) {
	hreq, err := c.newRequest(ctx, path)
	if err != nil {
		return Page{}, err
	}
	hreq.Header.Set("Accept", "text/html")

	resp, err := c.http.Do(hreq)
	if err != nil {
		return Page{}, errors.Wrap(err, "load")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Page{}, errors.Wrapf(ErrUnexpectedStatus, "load %s: %d", path, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return Page{}, errors.Wrap(err, "parse shell")
	}
	raw, ok := doc.Find("#" + AppElementID).Attr("data-page")
	if !ok {
		return Page{}, errors.Wrapf(ErrNoPage, "load %s", path)
	}
	var page Page
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return Page{}, errors.Wrap(err, "decode boot page")
	}
	return page, nil
}

func (c *Client) newRequest(ctx context.Context, href string) (*http.Request, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return nil, errors.Wrap(err, "parse href")
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.ResolveReference(ref).String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	for k, v := range c.header {
		hreq.Header[k] = v
	}
	return hreq, nil
}

// apply installs page unless a later visit already landed. With merge the
// returned props replace their namesakes and the rest are kept.
func (c *Client) apply(seq uint64, page Page, merge bool) {
	c.mu.Lock()
	if seq < c.applied {
		c.mu.Unlock()
		c.logger.WithField("visit", seq).Debug("dropping stale response")
		return
	}
	c.applied = seq
	if merge {
		props := maps.Clone(c.page.Props)
		if props == nil {
			props = Props{}
		}
		maps.Copy(props, page.Props)
		page.Props = props
	}
	c.page = page
	snapshot := page
	snapshot.Props = maps.Clone(page.Props)
	c.mu.Unlock()

	if c.onSuccess != nil {
		c.onSuccess(snapshot)
	}
}

func (c *Client) fail(logger *logrus.Entry, err error) {
	if errors.Is(err, context.Canceled) {
		logger.Debug("visit canceled")
		return
	}
	logger.WithError(err).Warn("visit failed")
	if c.onError != nil {
		c.onError(err)
	}
}
