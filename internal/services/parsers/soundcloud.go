// -----------------------------------------------------------------------
// Profile Search Parser - Audio platform search results and profile pages
// -----------------------------------------------------------------------

package parsers

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/ternarybob/leadhound/internal/common"
	"github.com/ternarybob/leadhound/internal/models"
)

// profileLinkSelectors are evaluated in order and their matches concatenated
var profileLinkSelectors = []string{
	`a[href^="/"][title]`,
	`article a[href^="/"]`,
	`.trackItem a[href^="/"]`,
}

// systemSegments are first path segments that belong to the platform, not to a user
var systemSegments = map[string]bool{
	"search":       true,
	"tracks":       true,
	"sets":         true,
	"discover":     true,
	"you":          true,
	"stream":       true,
	"feed":         true,
	"upload":       true,
	"terms-of-use": true,
	"pages":        true,
	"imprint":      true,
	"charts":       true,
	"premium":      true,
	"pro":          true,
	"mobile":       true,
	"apps":         true,
	"help":         true,
}

// slugRejectTerms disqualify a slug when contained anywhere in it
var slugRejectTerms = []string{"track", "set", "playlist", "likes", "reposts"}

var (
	instagramURLPattern = regexp.MustCompile(`(?i)instagram\.com/([A-Za-z0-9._]{2,30})`)
	handlePattern       = regexp.MustCompile(`(?:^|[^\w@])@([A-Za-z0-9._]{2,30})`)
	digitsPattern       = regexp.MustCompile(`^[0-9]+$`)
)

// SoundCloudParser reads the rendered markup of the audio platform
type SoundCloudParser struct {
	baseURL  string
	maxLinks int
}

// NewSoundCloudParser creates a parser; maxLinks bounds the anchors examined per search page
func NewSoundCloudParser(baseURL string, maxLinks int) *SoundCloudParser {
	return &SoundCloudParser{
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxLinks: maxLinks,
	}
}

// ExtractProfileLinks returns unique profile URLs in page order.
// Track and set links resolve to their owner's profile.
func (p *SoundCloudParser) ExtractProfileLinks(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var hrefs []string
	for _, selector := range profileLinkSelectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			if href, exists := s.Attr("href"); exists {
				hrefs = append(hrefs, href)
			}
		})
	}
	if p.maxLinks > 0 && len(hrefs) > p.maxLinks {
		hrefs = hrefs[:p.maxLinks]
	}

	seen := make(map[string]bool)
	var profiles []string
	for _, href := range hrefs {
		slug, ok := ProfileSlug(href)
		if !ok {
			continue
		}
		profileURL := common.JoinPath(p.baseURL, slug)
		if seen[profileURL] {
			continue
		}
		seen[profileURL] = true
		profiles = append(profiles, profileURL)
	}

	return profiles
}

// ProfileSlug returns the user slug a root-relative href points into
func ProfileSlug(href string) (string, bool) {
	if !strings.HasPrefix(href, "/") || strings.HasPrefix(href, "//") {
		return "", false
	}

	slug := common.FirstPathSegment(href)
	lower := strings.ToLower(slug)

	if len(slug) <= 1 || systemSegments[lower] || digitsPattern.MatchString(slug) {
		return "", false
	}
	for _, term := range slugRejectTerms {
		if strings.Contains(lower, term) {
			return "", false
		}
	}

	return slug, true
}

// ParseProfile reads name, bio, a contact handle and a sample track from a profile page
func (p *SoundCloudParser) ParseProfile(html string, profileURL string) (*models.ArtistProfile, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse profile HTML: %w", err)
	}

	name := profileName(doc)
	if name == "" {
		return nil, fmt.Errorf("%w: no display name on %s", models.ErrExtractionMismatch, profileURL)
	}

	profile := &models.ArtistProfile{
		Name:       name,
		ProfileURL: profileURL,
	}

	profile.Bio = p.profileBio(doc)
	profile.Handle = extractHandle(profile.Bio)

	track := doc.Find(`article a[itemprop="url"]`).First()
	if track.Length() == 0 {
		track = doc.Find("h2 a").First()
	}
	if track.Length() > 0 {
		profile.SampleTrackTitle = strings.TrimSpace(track.Text())
		if href, exists := track.Attr("href"); exists {
			if strings.HasPrefix(href, "/") {
				href = common.JoinPath(p.baseURL, href)
			}
			profile.SampleTrackURL = href
		}
	}

	return profile, nil
}

// profileName tries og:title, then the first heading, then the document title
func profileName(doc *goquery.Document) string {
	if content, exists := doc.Find(`meta[property="og:title"]`).Attr("content"); exists {
		if name := strings.TrimSpace(content); name != "" {
			return name
		}
	}
	if name := strings.TrimSpace(doc.Find("h1").First().Text()); name != "" {
		return name
	}
	return cleanTitle(doc.Find("title").First().Text())
}

// cleanTitle strips the platform's decoration from a document title:
// "Stream DJ Nova music | Listen to songs..." yields "DJ Nova"
func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	if idx := strings.Index(title, " | "); idx >= 0 {
		title = title[:idx]
	}
	if strings.HasPrefix(title, "Stream ") && strings.HasSuffix(title, " music") {
		title = strings.TrimSuffix(strings.TrimPrefix(title, "Stream "), " music")
	}
	return strings.TrimSpace(title)
}

// profileBio converts the rendered description to markdown, falling back to the meta description
func (p *SoundCloudParser) profileBio(doc *goquery.Document) string {
	if description := doc.Find(".truncatedUserDescription").First(); description.Length() > 0 {
		if descriptionHTML, err := description.Html(); err == nil {
			converter := md.NewConverter(p.baseURL, true, nil)
			if markdown, err := converter.ConvertString(descriptionHTML); err == nil {
				if bio := strings.TrimSpace(markdown); bio != "" {
					return bio
				}
			}
		}
	}

	content, _ := doc.Find(`meta[name="description"]`).Attr("content")
	return strings.TrimSpace(content)
}

// extractHandle prefers an explicit instagram link over a bare @mention
func extractHandle(text string) string {
	if match := instagramURLPattern.FindStringSubmatch(text); match != nil {
		return strings.TrimRight(match[1], ".")
	}
	if match := handlePattern.FindStringSubmatch(text); match != nil {
		return strings.TrimRight(match[1], ".")
	}
	return ""
}
