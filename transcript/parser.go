package transcript

import (
	"bufio"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// Parser turns a raw chat export into an ordered sequence of logical
// messages. Every input line ends up in exactly one message or produces a
// ParseWarning; nothing is dropped silently.
type Parser struct {
	anon *Anonymizer
	log  *logrus.Entry
}

func NewParser(anonymize bool) *Parser {
	return &Parser{
		anon: NewAnonymizer(anonymize),
		log:  logrus.WithField("component", "parser"),
	}
}

// Anonymizer exposes the participant identity mapping built during Parse.
func (p *Parser) Anonymizer() *Anonymizer { return p.anon }

func (p *Parser) Parse(raw string) ([]ParsedMessage, []ParseWarning, error) {
	raw = strings.TrimPrefix(raw, "\uFEFF")
	if strings.TrimSpace(raw) == "" {
		return nil, nil, ErrEmptyTranscript
	}
	if !utf8.ValidString(raw) || strings.ContainsRune(raw, 0) {
		return nil, nil, ErrBinaryPayload
	}

	format := DetectFormat(raw)
	p.log.WithField("format", format).Debug("detected export format")

	var (
		msgs     []ParsedMessage
		warnings []ParseWarning
	)

	sc := bufio.NewScanner(strings.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")

		date, clock, rest, matched := matchLine(line)
		if !matched {
			// continuation of the previous message, or orphaned
			if len(msgs) == 0 {
				warnings = append(warnings, ParseWarning{
					Line:   lineNo,
					Reason: "continuation line before any message",
				})
				continue
			}
			// newline join keeps blank lines: paragraph breaks are content
			msgs[len(msgs)-1].Text += "\n" + line
			continue
		}

		msg := ParsedMessage{}
		if ts, ok := parseTimestamp(date, clock); ok {
			msg.Timestamp = &ts
		} else {
			warnings = append(warnings, ParseWarning{
				Line:   lineNo,
				Reason: "unparseable timestamp: " + date + ", " + clock,
			})
		}

		if sender, body, ok := splitSender(rest); ok {
			label := p.anon.Label(sender)
			msg.Sender = &label
			msg.Text = body
			msg.IsMediaPlaceholder = isMediaPlaceholder(body)
		} else {
			msg.IsSystemEvent = true
			msg.Text = rest
			if !isSystemEvent(rest) {
				p.log.WithField("line", lineNo).Debug("sender-less line with no known system marker")
			}
		}
		msgs = append(msgs, msg)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	if len(msgs) == 0 {
		return nil, warnings, ErrNoMessages
	}

	for i := range msgs {
		msgs[i].Index = i
		msgs[i].CleanedText = CleanForAnalysis(msgs[i].Text)
		msgs[i].Features = ExtractFeatures(msgs[i].Text)
	}
	if len(warnings) > 0 {
		p.log.WithField("count", len(warnings)).Warn("recovered from parse anomalies")
	}
	return msgs, warnings, nil
}

// matchLine tries the line matchers in priority order and returns the
// timestamp fields plus the remainder of the line.
func matchLine(line string) (date, clock, rest string, ok bool) {
	if m := reIOS.FindStringSubmatch(line); m != nil {
		return m[1], m[2], m[3], true
	}
	if m := reAndroid.FindStringSubmatch(line); m != nil {
		return m[1], m[2], m[3], true
	}
	return "", "", "", false
}

// splitSender splits "Name: body" on the first colon-space only, so the
// body keeps any colons of its own. A missing separator means the line is
// a system event.
func splitSender(rest string) (sender, body string, ok bool) {
	parts := strings.SplitN(rest, ": ", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return "", "", false
	}
	sender = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parts[0]), "~ "))
	return sender, parts[1], true
}
