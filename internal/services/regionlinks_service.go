// Package services – RegionLinkService
//
// This file maintains per-region online-vote-by-mail override links scraped
// from an external source, and resolves the delivery link for a ballot
// request with the precedence region override → statewide field → none.
//
// The scrape is deliberately brittle-but-safe: any fetch or parse problem
// aborts the whole refresh before a single stored link is touched, so a
// source-format change degrades to "keep yesterday's links", never to a
// half-empty table.
package services

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/votehq/turnout-backend/internal/domain"
	"github.com/votehq/turnout-backend/internal/repo"
)

// Some county election sites block unknown or missing user-agents.
const defaultScrapeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/70.0.3538.77 Safari/537.36"

// RefreshLock serializes the refresh across instances. TryLock returns a
// release function on success and ErrRefreshLocked when another holder is
// active. A nil RefreshLock on the service disables locking.
type RefreshLock interface {
	TryLock(ctx context.Context) (release func(), err error)
}

// RegionLinkService scrapes and resolves ballot-delivery override links.
type RegionLinkService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Client performs the scrape fetch; it must carry a bounded timeout.
	Client *http.Client
	// SourceURL is the page listing per-county application links.
	SourceURL string
	// State is the state whose links the source covers.
	State string
	// UserAgent overrides the browser-like default when non-empty.
	UserAgent string
	// Lock optionally serializes refreshes across instances.
	Lock RefreshLock
}

// NewRegionLinkService constructs a RegionLinkService with a sane default
// HTTP client when none is supplied.
func NewRegionLinkService(db *gorm.DB, client *http.Client, sourceURL, state string) *RegionLinkService {
	if client == nil {
		client = http.DefaultClient
	}
	return &RegionLinkService{
		DB:        db,
		Client:    client,
		SourceURL: sourceURL,
		State:     state,
	}
}

var nonAlphaRE = regexp.MustCompile(`[^a-z]`)

// stripMarks removes combining marks after NFD decomposition, so accented
// county names match their plain-ASCII spellings in the officials dataset.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeCountyName collapses different spellings of the same county
// (e.g. De Soto vs. DESOTO, ST. JOHNS vs. Saint Johns, Doña Ana vs. Dona Ana).
func NormalizeCountyName(name string) string {
	if folded, _, err := transform.String(stripMarks, name); err == nil {
		name = folded
	}
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "saint", "st")
	return nonAlphaRE.ReplaceAllString(name, "")
}

// scrapedLink is one (county, url) pair parsed from the source page.
type scrapedLink struct {
	county string
	url    string
}

// parseCountyLinks extracts the per-county application links from the source
// page. Every list item must carry both a county heading and a link; a
// missing piece means the page structure changed and the refresh must abort.
func parseCountyLinks(doc *goquery.Document) ([]scrapedLink, error) {
	var out []scrapedLink
	var parseErr error

	doc.Find("div#counties div.nectar-hor-list-item").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		county := strings.TrimSpace(row.Find("h5").First().Text())
		if county == "" {
			parseErr = fmt.Errorf("county list item is missing an h5 heading")
			return false
		}
		href, ok := row.Find("a.full-link").First().Attr("href")
		if !ok || href == "" {
			parseErr = fmt.Errorf("county list item for %q is missing a.full-link", county)
			return false
		}
		out = append(out, scrapedLink{county: county, url: href})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return out, nil
}

// Refresh fetches the source page and replaces the state's override links
// wholesale: regions present in the new source are (re)created, regions
// absent are deleted, and any failure leaves the existing links intact.
func (s *RegionLinkService) Refresh(ctx context.Context) error {
	tr := otel.Tracer("services/RegionLinkService")
	ctx, span := tr.Start(ctx, "Refresh")
	defer span.End()

	if s.Lock != nil {
		release, err := s.Lock.TryLock(ctx)
		if err != nil {
			return err
		}
		defer release()
	}

	regions, err := repo.ListRegionsByState(ctx, s.DB, s.State)
	if err != nil {
		return err
	}
	byCounty := make(map[string]domain.Region, len(regions))
	for _, r := range regions {
		byCounty[NormalizeCountyName(r.County)] = r
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.SourceURL, nil)
	if err != nil {
		return err
	}
	ua := s.UserAgent
	if ua == "" {
		ua = defaultScrapeUserAgent
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("User-Agent", ua)

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch region links: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch region links: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return fmt.Errorf("parse region links: %w", err)
	}
	scraped, err := parseCountyLinks(doc)
	if err != nil {
		return fmt.Errorf("parse region links: %w", err)
	}

	links := make([]domain.RegionOVBMLink, 0, len(scraped))
	for _, sl := range scraped {
		region, ok := byCounty[NormalizeCountyName(sl.county)]
		if !ok {
			return fmt.Errorf("scraped county %q is not in the officials data", sl.county)
		}
		links = append(links, domain.RegionOVBMLink{RegionID: region.ExternalID, URL: sl.url})
	}
	if len(links) != len(byCounty) {
		return fmt.Errorf("scraped %d counties but officials data has %d regions", len(links), len(byCounty))
	}

	if err := repo.ReplaceRegionLinks(ctx, s.DB, s.State, links); err != nil {
		return err
	}
	log.Info().Str("state", s.State).Int("links", len(links)).Msg("region links refreshed")
	return nil
}

// LinkFor resolves the delivery link for a ballot request:
//
//  1. the region's override link, when the request has a region with one;
//  2. else the statewide external_tool_vbm_application field, when non-empty;
//  3. else "" (no link).
//
// The region lookup is attempted even when the region belongs to a different
// state than the request's state field: region identity wins, which permits
// cross-jurisdiction corrections.
func (s *RegionLinkService) LinkFor(ctx context.Context, request *domain.BallotRequest) (string, error) {
	if request.RegionID != nil {
		link, err := repo.GetRegionLink(ctx, s.DB, *request.RegionID)
		if err != nil {
			return "", err
		}
		if link != nil {
			return link.URL, nil
		}
	}

	if request.State != "" {
		info, err := repo.GetStateInfo(ctx, s.DB, request.State, domain.StateVBMLinkField)
		if err != nil {
			return "", err
		}
		if info != nil && strings.TrimSpace(info.Text) != "" {
			return info.Text, nil
		}
	}

	return "", nil
}
