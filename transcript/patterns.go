package transcript

import (
	"regexp"
	"strings"
	"time"
)

// Line matchers, most specific first. The iOS export wraps the timestamp in
// brackets and carries seconds; Android and the web export share a
// "date, time - " prefix. Anything that matches none of these is a
// continuation of the previous message.
var (
	reIOS     = regexp.MustCompile(`^\[(\d{1,2}/\d{1,2}/\d{2,4}),?\s(\d{1,2}:\d{2}(?::\d{2})?(?:\s?[AaPp][Mm])?)\]\s(.*)$`)
	reAndroid = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2,4}),\s(\d{1,2}:\d{2}(?::\d{2})?(?:\s?[AaPp][Mm])?)\s-\s(.*)$`)
)

// Timestamp layouts tried in order. Day-first conventions go before
// month-first so ambiguous dates resolve the way most export locales do;
// an impossible month (>12) makes the wrong order fail and fall through.
var timestampLayouts = []string{
	"2/1/2006, 15:04:05",
	"1/2/2006, 15:04:05",
	"2/1/2006, 15:04",
	"1/2/2006, 15:04",
	"2/1/06, 15:04:05",
	"1/2/06, 15:04:05",
	"2/1/06, 15:04",
	"1/2/06, 15:04",
	"2/1/2006, 3:04:05 PM",
	"1/2/2006, 3:04:05 PM",
	"2/1/2006, 3:04 PM",
	"1/2/2006, 3:04 PM",
	"2/1/06, 3:04 PM",
	"1/2/06, 3:04 PM",
}

func parseTimestamp(date, clock string) (time.Time, bool) {
	s := date + ", " + strings.ToUpper(strings.TrimSpace(clock))
	// normalize "9:05PM" to "9:05 PM" for the 12h layouts
	if i := strings.IndexAny(s, "AP"); i > 0 && s[i-1] != ' ' && strings.HasSuffix(s, "M") {
		s = s[:i] + " " + s[i:]
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// System event markers, matched case-insensitively against sender-less lines.
var systemMarkers = []string{
	"messages and calls are end-to-end encrypted",
	"created group",
	"created this group",
	"added you",
	"joined using this group's invite link",
	"changed the group description",
	"changed the subject",
	"changed this group's icon",
	"left",
	"removed",
	"security code changed",
	"missed voice call",
	"missed video call",
}

// Media placeholder markers, matched against the whole body.
var mediaMarkers = []string{
	"<media omitted>",
	"image omitted",
	"video omitted",
	"audio omitted",
	"document omitted",
	"sticker omitted",
	"gif omitted",
	"contact card omitted",
	"this message was deleted",
	"you deleted this message",
}

func isSystemEvent(body string) bool {
	lower := strings.ToLower(body)
	for _, m := range systemMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

func isMediaPlaceholder(body string) bool {
	lower := strings.ToLower(strings.TrimSpace(body))
	for _, m := range mediaMarkers {
		if lower == m || strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// DetectFormat sniffs the export layout from the head of the transcript.
func DetectFormat(raw string) Format {
	head := raw
	if len(head) > 2000 {
		head = head[:2000]
	}
	for _, line := range strings.Split(head, "\n") {
		line = strings.TrimPrefix(line, "\uFEFF")
		if reIOS.MatchString(line) {
			return FormatIOS
		}
		if reAndroid.MatchString(line) {
			return FormatAndroid
		}
	}
	return FormatAndroid
}
