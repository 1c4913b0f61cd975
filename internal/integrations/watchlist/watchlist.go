package watchlist

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"github.com/fraudsight/transaction-service/internal/config"
)

// Client fetches the merchant watchlist feed, an XML document listing
// merchants flagged by the upstream risk desk.
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new watchlist client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.WatchlistURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// Enabled reports whether a feed URL is configured.
func (c *Client) Enabled() bool {
	return c.url != ""
}

// fetchFeed downloads the raw watchlist XML
func (c *Client) fetchFeed() ([]byte, error) {
	req, err := http.NewRequest("GET", c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	c.log.Debugf("Watchlist XML response: %d bytes", len(body))
	return body, nil
}

// parseFeed extracts flagged merchant names from the XML document
func parseFeed(rawBody []byte) ([]string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %v", err)
	}

	entries := doc.FindElements("//watchlist/merchant")
	if len(entries) == 0 {
		return nil, nil
	}

	merchants := make([]string, 0, len(entries))
	for _, entry := range entries {
		nameElement := entry.FindElement("./name")
		if nameElement == nil {
			continue
		}
		name := strings.TrimSpace(nameElement.Text())
		if name != "" {
			merchants = append(merchants, name)
		}
	}
	return merchants, nil
}

// FlaggedMerchants retrieves the current set of flagged merchant names.
func (c *Client) FlaggedMerchants() ([]string, error) {
	body, err := c.fetchFeed()
	if err != nil {
		return nil, err
	}
	merchants, err := parseFeed(body)
	if err != nil {
		return nil, err
	}
	c.log.Infof("Watchlist feed loaded: %d flagged merchants", len(merchants))
	return merchants, nil
}
