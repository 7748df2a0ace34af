package clients

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// --- Page parser ---
// Cue timings are requested but not decoded; the report does not use them.
type Cue struct {
	SpeakerName string `json:"speakerName"`
	Text        string `json:"text"`
}

type Section struct {
	Cues []Cue `json:"cues"`
}

type ActionItem struct {
	Content   string `json:"content"`
	Completed bool   `json:"completed"`
}

type ChapterItem struct {
	Content string `json:"content"`
}

type ChapterMarker struct {
	Title string        `json:"title"`
	Items []ChapterItem `json:"items"`
}

type SummaryItem struct {
	Content string `json:"content"`
}

type Summary struct {
	Recap          string          `json:"recap"`
	ActionItems    []ActionItem    `json:"actionItems"`
	ChapterMarkers []ChapterMarker `json:"chapterMarkers"`
	SummaryItems   []SummaryItem   `json:"summaryItems"`
}

type Transcript struct {
	Sections []Section `json:"sections"`
	Summary  *Summary  `json:"summary"`
}

// Video is one meeting recording. Transcript is nil when the API has none.
type Video struct {
	ID         string
	Title      string
	CreatedAt  time.Time
	Transcript *Transcript
}

type Page struct {
	Videos      []Video
	EndCursor   string
	HasNextPage bool
}

type videoNode struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	CreatedAt  string      `json:"createdAt"`
	Transcript *Transcript `json:"transcript"`
}

// ParsePage decodes one videos page. Missing optional fields are left
// zero; a missing page structure or timestamp is a MalformedResponseError.
func ParsePage(body []byte) (*Page, error) {
	if !gjson.ValidBytes(body) {
		return nil, malformed("response is not valid JSON", nil)
	}
	root := gjson.ParseBytes(body)

	videos := root.Get("data.channel.videos")
	if !videos.IsObject() {
		if errs := root.Get("errors"); errs.IsArray() && len(errs.Array()) > 0 {
			return nil, malformed("graphql errors: "+graphQLMessages(errs), nil)
		}
		return nil, malformed("missing data.channel.videos", nil)
	}

	edges := videos.Get("edges")
	if !edges.IsArray() {
		return nil, malformed("missing data.channel.videos.edges", nil)
	}
	pageInfo := videos.Get("pageInfo")
	if !pageInfo.IsObject() {
		return nil, malformed("missing data.channel.videos.pageInfo", nil)
	}
	hasNext := pageInfo.Get("hasNextPage")
	if hasNext.Type != gjson.True && hasNext.Type != gjson.False {
		return nil, malformed("missing pageInfo.hasNextPage", nil)
	}

	page := &Page{
		EndCursor:   pageInfo.Get("endCursor").String(),
		HasNextPage: hasNext.Bool(),
	}

	for i, edge := range edges.Array() {
		node := edge.Get("node")
		if !node.IsObject() {
			return nil, malformed(fmt.Sprintf("edge %d has no node", i), nil)
		}
		var n videoNode
		if err := json.Unmarshal([]byte(node.Raw), &n); err != nil {
			return nil, malformed(fmt.Sprintf("edge %d", i), err)
		}
		if n.CreatedAt == "" {
			return nil, malformed(fmt.Sprintf("video %q has no createdAt", n.ID), nil)
		}
		created, err := parseCreatedAt(n.CreatedAt)
		if err != nil {
			return nil, malformed(fmt.Sprintf("video %q createdAt", n.ID), err)
		}
		page.Videos = append(page.Videos, Video{
			ID:         n.ID,
			Title:      n.Title,
			CreatedAt:  created,
			Transcript: n.Transcript,
		})
	}
	return page, nil
}

// zonelessLayout is an ISO timestamp without an offset; those are read as UTC.
const zonelessLayout = "2006-01-02T15:04:05.999999999"

func parseCreatedAt(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	if z, zerr := time.ParseInLocation(zonelessLayout, s, time.UTC); zerr == nil {
		return z, nil
	}
	return time.Time{}, err
}

func graphQLMessages(errs gjson.Result) string {
	var msgs []string
	for _, e := range errs.Array() {
		if m := e.Get("message").String(); m != "" {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) == 0 {
		return "unknown error"
	}
	return strings.Join(msgs, "; ")
}
