package discovery

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Listing-page markup contract. A change here means the site layout drifted.
const (
	entrySelector    = "div.accordeon-inner__wrap-item"
	nextPageSelector = ".bx-pag-next"
	bulletinMarker   = "Бюллетень"
	dateLayout       = "02.01.2006"
)

// ParseError reports unexpected listing markup. It is fatal for the whole
// run: a silently skipped entry would corrupt the incremental stop condition.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "listing markup: " + e.Reason
}

// listingEntry is one accordion block that carries a bulletin link.
type listingEntry struct {
	date     time.Time
	dateText string // as displayed, dd.mm.yyyy
	href     string // site-relative download path
}

// parseListingPage extracts bulletin entries and the next-page href from one
// listing page. Entries stop at the first block whose label is not a
// bulletin; blocks after it are other document types. nextPath is empty on
// the last page.
func parseListingPage(html string) (entries []listingEntry, nextPath string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, "", fmt.Errorf("parse listing html: %w", err)
	}

	var parseErr error
	doc.Find(entrySelector).EachWithBreak(func(i int, block *goquery.Selection) bool {
		anchor := block.Find("a").First()
		if anchor.Length() == 0 {
			parseErr = &ParseError{Reason: fmt.Sprintf("entry %d has no anchor tag", i)}
			return false
		}

		if !strings.Contains(anchor.Text(), bulletinMarker) {
			// End of bulletin entries on this page.
			return false
		}

		span := block.Find("span").First()
		if span.Length() == 0 {
			parseErr = &ParseError{Reason: fmt.Sprintf("entry %d has no date span", i)}
			return false
		}

		dateText := strings.TrimSpace(span.Text())
		date, err := time.Parse(dateLayout, dateText)
		if err != nil {
			parseErr = &ParseError{Reason: fmt.Sprintf("entry %d has unparseable date %q", i, dateText)}
			return false
		}

		href, ok := anchor.Attr("href")
		if !ok || href == "" {
			parseErr = &ParseError{Reason: fmt.Sprintf("entry %d anchor has no href", i)}
			return false
		}
		if !strings.HasPrefix(href, "/") {
			href = "/" + href
		}

		entries = append(entries, listingEntry{
			date:     date,
			dateText: dateText,
			href:     href,
		})
		return true
	})
	if parseErr != nil {
		return nil, "", parseErr
	}

	pagination := doc.Find(nextPageSelector).First()
	if pagination.Length() > 0 {
		anchor := pagination.Find("a").First()
		if anchor.Length() == 0 {
			return nil, "", &ParseError{Reason: "pagination control has no anchor tag"}
		}
		href, ok := anchor.Attr("href")
		if !ok || href == "" {
			return nil, "", &ParseError{Reason: "pagination anchor has no href"}
		}
		nextPath = href
	}

	return entries, nextPath, nil
}

// fileExtension returns the extension of a download path with any query
// string stripped ("/upload/x.xlsx?r=123" -> "xlsx").
func fileExtension(href string) string {
	path, _, _ := strings.Cut(href, "?")
	name := path[strings.LastIndex(path, "/")+1:]
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
