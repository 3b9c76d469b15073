// -----------------------------------------------------------------------
// Video Search Parser - Reads the structured data embedded in search pages
// -----------------------------------------------------------------------

package parsers

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/ternarybob/leadhound/internal/models"
)

// jsonString matches the body of a JSON string literal, escapes included
const jsonString = `((?:[^"\\]|\\.)*)`

// bylinePatterns are tried in order; each yields channel names in page order
var bylinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`"ownerText":\{"runs":\[\{"text":"` + jsonString + `"`),
	regexp.MustCompile(`"longBylineText":\{"runs":\[\{"text":"` + jsonString + `"`),
	regexp.MustCompile(`"shortBylineText":\{"runs":\[\{"text":"` + jsonString + `"`),
}

// initialDataPattern locates the search results payload assigned in an inline script
var initialDataPattern = regexp.MustCompile(`(?s)(?:var ytInitialData|window\["ytInitialData"\])\s*=\s*(\{.+?\});\s*</script>`)

// YouTubeParser extracts channels and videos from a video platform results page
type YouTubeParser struct{}

// NewYouTubeParser creates a video search parser
func NewYouTubeParser() *YouTubeParser {
	return &YouTubeParser{}
}

// ExtractChannelNames returns byline names in pattern order then page order.
// Duplicates are kept; the caller deduplicates.
func (p *YouTubeParser) ExtractChannelNames(html string) []string {
	var names []string
	for _, pattern := range bylinePatterns {
		for _, match := range pattern.FindAllStringSubmatch(html, -1) {
			name := strings.TrimSpace(unescapeJSON(match[1]))
			if name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

// ExtractTracks returns every videoRenderer entry found in the embedded data
func (p *YouTubeParser) ExtractTracks(html string) []models.CandidateTrack {
	match := initialDataPattern.FindStringSubmatch(html)
	if match == nil || !gjson.Valid(match[1]) {
		return nil
	}

	var tracks []models.CandidateTrack
	walkRenderers(gjson.Parse(match[1]), "videoRenderer", func(renderer gjson.Result) {
		track := models.CandidateTrack{
			VideoID:     renderer.Get("videoId").String(),
			Title:       firstText(renderer.Get("title")),
			ChannelName: firstText(renderer.Get("ownerText")),
			ChannelID:   renderer.Get("ownerText.runs.0.navigationEndpoint.browseEndpoint.browseId").String(),
		}
		if track.ChannelName == "" {
			track.ChannelName = firstText(renderer.Get("longBylineText"))
			track.ChannelID = renderer.Get("longBylineText.runs.0.navigationEndpoint.browseEndpoint.browseId").String()
		}
		if track.VideoID == "" || track.Title == "" {
			return
		}
		tracks = append(tracks, track)
	})

	return tracks
}

// walkRenderers visits every object stored under key, depth first in document order
func walkRenderers(value gjson.Result, key string, visit func(gjson.Result)) {
	if !value.IsObject() && !value.IsArray() {
		return
	}
	value.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key && v.IsObject() {
			visit(v)
			return true
		}
		walkRenderers(v, key, visit)
		return true
	})
}

// firstText reads {"runs":[{"text":...}]} or {"simpleText":...}
func firstText(value gjson.Result) string {
	if text := value.Get("runs.0.text"); text.Exists() {
		return strings.TrimSpace(text.String())
	}
	return strings.TrimSpace(value.Get("simpleText").String())
}

// unescapeJSON decodes the body of a JSON string literal
func unescapeJSON(raw string) string {
	decoded := gjson.Parse(`"` + raw + `"`)
	if decoded.Type != gjson.String {
		return raw
	}
	return decoded.String()
}
