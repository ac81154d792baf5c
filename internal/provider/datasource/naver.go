// Naver Finance fallback scraper. Used when the primary source has no
// holdings for a ticker/date; the ETF page carries a snapshot of the
// creation-unit portfolio.
package datasource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"active-etf-analyzer/internal/logger"
	"active-etf-analyzer/internal/types"
)

const naverBaseURL = "https://finance.naver.com"

// NaverScraper scrapes ETF data from Naver Finance item pages.
type NaverScraper struct {
	baseURL string
	timeout time.Duration
}

// NewNaverScraper creates a Naver Finance scraper.
func NewNaverScraper(timeout time.Duration) *NaverScraper {
	return &NaverScraper{
		baseURL: naverBaseURL,
		timeout: timeout,
	}
}

// ETFName scrapes the ETF display name from the item page header.
func (n *NaverScraper) ETFName(ctx context.Context, ticker string) (string, error) {
	var name string

	c := n.newCollector()
	c.OnHTML("div.wrap_company h2 a", func(e *colly.HTMLElement) {
		if name == "" {
			name = strings.TrimSpace(e.Text)
		}
	})

	if err := c.Visit(n.itemURL(ticker)); err != nil {
		return "", fmt.Errorf("naver: visit item page for %s: %w", ticker, err)
	}
	c.Wait()

	if name == "" {
		return "", fmt.Errorf("naver: no name found for %s", ticker)
	}
	return name, nil
}

// Holdings scrapes the creation-unit portfolio table from the ETF item
// page. Naver shows only the current snapshot, so date is recorded on
// the result but not selectable. Returns (nil, nil) when the page has
// no portfolio table.
func (n *NaverScraper) Holdings(ctx context.Context, ticker, date string) (*types.RawHoldings, error) {
	holdings := &types.RawHoldings{
		ETFTicker: ticker,
		Date:      date,
		Columns:   []string{"종목명", "비중"},
	}

	c := n.newCollector()

	c.OnHTML("div.wrap_company h2 a", func(e *colly.HTMLElement) {
		if holdings.ETFName == "" {
			holdings.ETFName = strings.TrimSpace(e.Text)
		}
	})

	// The CU portfolio table lists one stock per row: name, quantity,
	// amount, weight.
	c.OnHTML("table.tbl_type1", func(e *colly.HTMLElement) {
		caption := strings.TrimSpace(e.DOM.Find("caption").Text())
		if !strings.Contains(caption, "구성") {
			return
		}
		e.DOM.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() < 2 {
				return
			}
			name := strings.TrimSpace(cells.Eq(0).Text())
			weight := strings.TrimSpace(strings.TrimSuffix(cells.Eq(cells.Length()-1).Text(), "%"))
			if name == "" || name == "N/A" {
				return
			}
			holdings.Rows = append(holdings.Rows, types.Row{
				"종목명": name,
				"비중":  weight,
			})
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.Warn(ctx, "Naver scrape error", "ticker", ticker, "url", r.Request.URL.String(), "error", err)
	})

	if err := c.Visit(n.itemURL(ticker)); err != nil {
		return nil, fmt.Errorf("naver: visit item page for %s: %w", ticker, err)
	}
	c.Wait()

	if len(holdings.Rows) == 0 {
		return nil, nil
	}
	return holdings, nil
}

func (n *NaverScraper) newCollector() *colly.Collector {
	c := colly.NewCollector(
		colly.AllowedDomains("finance.naver.com"),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(n.timeout)
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	})
	return c
}

func (n *NaverScraper) itemURL(ticker string) string {
	return fmt.Sprintf("%s/item/main.naver?code=%s", n.baseURL, ticker)
}
