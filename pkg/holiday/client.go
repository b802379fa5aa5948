package holiday

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Checker reports whether a calendar date is a public holiday.
type Checker interface {
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
}

// publicHoliday is one entry of the public holidays API response.
type publicHoliday struct {
	Date      string `json:"date"`
	LocalName string `json:"localName"`
	Name      string `json:"name"`
}

// Client looks up public holidays over HTTP and caches whole years, so a
// month ingestion costs at most one upstream call.
type Client struct {
	http        *resty.Client
	countryCode string

	mu    sync.Mutex
	years map[int]map[string]struct{}
}

// NewClient creates a holiday client for one country.
func NewClient(baseURL, countryCode string, timeout time.Duration) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2)

	return &Client{
		http:        httpClient,
		countryCode: countryCode,
		years:       make(map[int]map[string]struct{}),
	}
}

var _ Checker = (*Client)(nil)

// IsHoliday reports whether the date is a public holiday. The first call
// for a year fetches and caches that year's calendar.
func (c *Client) IsHoliday(ctx context.Context, date time.Time) (bool, error) {
	dates, err := c.yearDates(ctx, date.Year())
	if err != nil {
		return false, err
	}

	_, ok := dates[date.Format("2006-01-02")]
	return ok, nil
}

func (c *Client) yearDates(ctx context.Context, year int) (map[string]struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if dates, ok := c.years[year]; ok {
		return dates, nil
	}

	var holidays []publicHoliday
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&holidays).
		Get(fmt.Sprintf("/api/v3/PublicHolidays/%d/%s", year, c.countryCode))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holidays for %d: %w", year, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("holiday API returned status %d for %d", resp.StatusCode(), year)
	}

	dates := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		dates[h.Date] = struct{}{}
	}

	c.years[year] = dates
	return dates, nil
}
