package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"moviecache/models"
)

// DefaultIMDbURL is the public IMDb site
const DefaultIMDbURL = "https://www.imdb.com"

const (
	castListMarker = ".cast_list"
	knownForMarker = "#knownfor"
)

// IMDbService scrapes cast lists and filmographies from IMDb pages. Extraction
// depends on page structure only, so it is best effort: lists end at the first
// row that does not look like the others.
type IMDbService struct {
	baseURL string
	acq     Acquirer
	logger  *zap.Logger
}

// NewIMDbService creates a new IMDb scraper
func NewIMDbService(baseURL string, acq Acquirer, logger *zap.Logger) *IMDbService {
	if baseURL == "" {
		baseURL = DefaultIMDbURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IMDbService{
		baseURL: strings.TrimRight(baseURL, "/"),
		acq:     acq,
		logger:  logger,
	}
}

// TitleURL returns the title page for imdbID
func (s *IMDbService) TitleURL(imdbID string) string {
	return s.baseURL + "/title/" + strings.TrimSpace(imdbID)
}

// GetCast scrapes the cast list of imdbID
func (s *IMDbService) GetCast(ctx context.Context, imdbID string) ([]models.Actor, error) {
	pageURL := s.TitleURL(imdbID)
	html, err := s.acq.Scrape(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cast for %s: %w", imdbID, err)
	}

	actors, err := ParseCast(html, s.baseURL, pageURL)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("parsed cast list", zap.String("imdb_id", imdbID), zap.Int("actors", len(actors)))
	return actors, nil
}

// GetKnownFor scrapes an actor profile and returns the known-for titles in page order
func (s *IMDbService) GetKnownFor(ctx context.Context, profileURL string) ([]string, error) {
	html, err := s.acq.Scrape(ctx, profileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch actor profile: %w", err)
	}
	return ParseKnownFor(html, profileURL)
}

// ParseCast extracts actors from a title page. The first table row is the
// header and is skipped. Parsing stops at the first row missing the name link,
// the character link, or the photo link.
func ParseCast(html, baseURL, pageURL string) ([]models.Actor, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse title page: %w", err)
	}

	castList := doc.Find(castListMarker).First()
	if castList.Length() == 0 {
		return nil, &ExtractionStructureError{URL: pageURL, Marker: castListMarker}
	}

	actors := []models.Actor{}
	castList.Find("tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i == 0 {
			return true
		}

		nameLink := row.Find("td").Eq(1).Find("a").First()
		name := strings.TrimSpace(nameLink.Text())
		if nameLink.Length() == 0 || name == "" {
			return false
		}

		characterLink := row.Find(".character a").First()
		if characterLink.Length() == 0 {
			return false
		}

		href, ok := row.Find(".primary_photo a").First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return false
		}

		actors = append(actors, models.NewActor(name, characterLink.Text(), resolveURL(baseURL, href)))
		return true
	})
	return actors, nil
}

// ParseKnownFor extracts the titles listed in the known-for section of a
// profile page, stopping at the first entry without a title link.
func ParseKnownFor(html, pageURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile page: %w", err)
	}

	section := doc.Find(knownForMarker).First()
	if section.Length() == 0 {
		return nil, &ExtractionStructureError{URL: pageURL, Marker: knownForMarker}
	}

	var titles []string
	section.Find(".knownfor-title-role").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		title := strings.TrimSpace(item.Find("a").First().Text())
		if title == "" {
			return false
		}
		titles = append(titles, title)
		return true
	})
	return titles, nil
}

func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	bu, err := url.Parse(base + "/")
	if err != nil {
		return base + href
	}
	ru, err := url.Parse(href)
	if err != nil {
		return base + href
	}
	return bu.ResolveReference(ru).String()
}
