package orchestrator

import (
	"strings"

	"github.com/RussellBTech/RewatchTranscriptFetcher/clients"
)

// Divider separates the header from the meetings and wraps each meeting.
var Divider = strings.Repeat("-", 50)

type RenderOptions struct {
	// IncludeSummary adds the recap, action items, chapters and summary
	// items after the cues.
	IncludeSummary bool
}

// RenderMeeting appends one in-range video: title, divider, one
// "speaker: text" line per cue with text, divider.
func RenderMeeting(sb *strings.Builder, v clients.Video, opts RenderOptions) {
	line(sb, v.Title)
	line(sb, Divider)
	if t := v.Transcript; t != nil {
		for _, sec := range t.Sections {
			for _, cue := range sec.Cues {
				if cue.Text == "" {
					continue
				}
				line(sb, cue.SpeakerName+": "+cue.Text)
			}
		}
		if opts.IncludeSummary && t.Summary != nil {
			renderSummary(sb, t.Summary)
		}
	}
	line(sb, Divider)
}

func renderSummary(sb *strings.Builder, s *clients.Summary) {
	if s.Recap == "" && len(s.ActionItems) == 0 && len(s.ChapterMarkers) == 0 && len(s.SummaryItems) == 0 {
		return
	}
	line(sb, "")
	line(sb, "Summary")
	if s.Recap != "" {
		line(sb, "Recap: "+s.Recap)
	}
	if len(s.SummaryItems) > 0 {
		line(sb, "Key points:")
		for _, it := range s.SummaryItems {
			line(sb, "  - "+it.Content)
		}
	}
	if len(s.ActionItems) > 0 {
		line(sb, "Action items:")
		for _, it := range s.ActionItems {
			box := "[ ]"
			if it.Completed {
				box = "[x]"
			}
			line(sb, "  "+box+" "+it.Content)
		}
	}
	for _, ch := range s.ChapterMarkers {
		line(sb, "Chapter: "+ch.Title)
		for _, it := range ch.Items {
			line(sb, "  - "+it.Content)
		}
	}
}

func line(sb *strings.Builder, s string) {
	sb.WriteString(s)
	sb.WriteByte('\n')
}
