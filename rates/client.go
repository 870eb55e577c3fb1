/*
Package rates keeps the statutory minimums table current.

PURPOSE:
  The law package ships a built-in minimum-wage history, but statutory
  amounts change twice a year. This package fetches the published XML feed,
  validates it through the same law.NewTable constructor, caches the
  snapshot in SQLite, and hands the engine a consistent table to evaluate
  against.

KEY CONCEPTS IN THIS FILE (client.go):
  - Client: HTTP fetcher for the feed, 10 second timeout
  - Feed format: <minimums> with one <entry effective_from="YYYY-MM-DD">
    per table row; child elements monthly, hourly, daily, employee_pension,
    employer_pension, severance. Hourly and daily floors are derived from
    the monthly amount when the feed omits them; the severance rate
    defaults to the statutory 8.33%.
  - Rates accept both percent ("6.5%") and fraction ("0.065") notation;
    bare values of one or more are read as percentages.

SEE ALSO:
  - source.go: cached table holder and scheduled refresh
  - law/table.go: validation applied to every fetched snapshot
*/
package rates

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/law"
	"github.com/warp/compliance-engine/parse"
)

// Client fetches and parses the statutory minimums feed.
type Client struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

// NewClient creates a feed client for the given URL.
func NewClient(url string, log zerolog.Logger) *Client {
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// FetchTable retrieves the feed and builds a validated minimums table.
func (c *Client) FetchTable(ctx context.Context) (*law.Table, []law.Minimum, error) {
	body, err := c.fetch(ctx)
	if err != nil {
		return nil, nil, err
	}

	entries, err := parseFeed(body)
	if err != nil {
		return nil, nil, err
	}

	table, err := law.NewTable(entries)
	if err != nil {
		return nil, nil, fmt.Errorf("feed produced an invalid table: %w", err)
	}

	c.log.Debug().Int("entries", table.Len()).Msg("rates feed fetched")
	return table, entries, nil
}

func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read feed response: %w", err)
	}
	return body, nil
}

func parseFeed(raw []byte) ([]law.Minimum, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("failed to parse feed XML: %w", err)
	}

	elements := doc.FindElements("//minimums/entry")
	if len(elements) == 0 {
		return nil, fmt.Errorf("no minimum entries found in feed")
	}

	entries := make([]law.Minimum, 0, len(elements))
	for _, el := range elements {
		m, err := parseEntry(el)
		if err != nil {
			return nil, err
		}
		entries = append(entries, m)
	}
	return entries, nil
}

func parseEntry(el *etree.Element) (law.Minimum, error) {
	var m law.Minimum

	from := el.SelectAttrValue("effective_from", "")
	t, err := time.Parse("2006-01-02", from)
	if err != nil {
		return m, fmt.Errorf("entry has bad effective_from %q: %w", from, err)
	}
	m.EffectiveFrom = law.Date(t.Year(), t.Month(), t.Day())

	monthly, ok := childAmount(el, "monthly")
	if !ok {
		return m, fmt.Errorf("entry %s: missing monthly amount", from)
	}
	m.MonthlyMinimum = monthly

	if hourly, ok := childAmount(el, "hourly"); ok {
		m.HourlyMinimum = hourly
	} else {
		m.HourlyMinimum = monthly.Div(law.StandardMonthlyHours).Round(2)
	}
	if daily, ok := childAmount(el, "daily"); ok {
		m.DailyMinimum = daily
	} else {
		m.DailyMinimum = monthly.Div(law.StandardWorkDaysPerMonth).Round(2)
	}

	if rate, ok := childRate(el, "employee_pension"); ok {
		m.EmployeePensionRate = rate
	} else {
		return m, fmt.Errorf("entry %s: missing employee_pension rate", from)
	}
	if rate, ok := childRate(el, "employer_pension"); ok {
		m.EmployerPensionRate = rate
	} else {
		return m, fmt.Errorf("entry %s: missing employer_pension rate", from)
	}
	if rate, ok := childRate(el, "severance"); ok {
		m.SeveranceFundRate = rate
	} else {
		m.SeveranceFundRate = law.DefaultSeveranceFundRate
	}

	return m, nil
}

func childAmount(el *etree.Element, name string) (decimal.Decimal, bool) {
	child := el.FindElement("./" + name)
	if child == nil {
		return decimal.Zero, false
	}
	return parse.Amount(child.Text())
}

// childRate reads a contribution rate. Percent notation wins; bare values of
// one or more are percentages, smaller values are already fractions.
func childRate(el *etree.Element, name string) (decimal.Decimal, bool) {
	child := el.FindElement("./" + name)
	if child == nil {
		return decimal.Zero, false
	}
	text := child.Text()
	if rate, ok := parse.Percent(text); ok {
		return rate, true
	}
	v, ok := parse.Amount(text)
	if !ok {
		return decimal.Zero, false
	}
	if v.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return v.Div(decimal.NewFromInt(100)), true
	}
	return v, true
}
