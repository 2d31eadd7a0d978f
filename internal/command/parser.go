// Package command parses free-text chat messages into capture commands.
//
// The grammar is:
//
//	[@bot] capture report <report name> last {3|5|7} days
//
// Keywords and the range phrase are case-insensitive; the report name keeps
// its original casing because registry lookups are exact.
package command

import (
	"fmt"
	"sort"
	"strings"
)

// Command is a fully validated capture request. It is only constructed after
// the whole message has passed the grammar; there is no partially populated state.
type Command struct {
	// Report is the report display name, exactly as the user typed it.
	Report string
	// Range is the canonical (lowercased) range token, e.g. "last 7 days".
	Range string
}

// Reason classifies why a message failed to parse.
type Reason string

const (
	ReasonNotAddressed    Reason = "not_addressed"
	ReasonMissingKeywords Reason = "missing_keywords"
	ReasonTooFewTokens    Reason = "too_few_tokens"
	ReasonEmptyReport     Reason = "empty_report"
	ReasonBadRange        Reason = "bad_range"
)

// ParseError describes a message that did not match the grammar. Parse never
// panics; every malformed input maps to one of the Reason values.
type ParseError struct {
	Reason Reason
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse: %s: %s", e.Reason, e.Detail)
}

// rangeDays maps each recognized range token to its day count. Tokens are
// stored lowercase; matching lowercases the candidate first.
var rangeDays = map[string]int{
	"last 3 days": 3,
	"last 5 days": 5,
	"last 7 days": 7,
}

// maxRangeWords is the word count of the longest recognized range token.
const maxRangeWords = 3

// Ranges returns the recognized range tokens in sorted order.
func Ranges() []string {
	tokens := make([]string, 0, len(rangeDays))
	for tok := range rangeDays {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return tokens
}

// IsRange reports whether token is a recognized range phrase.
func IsRange(token string) bool {
	_, ok := rangeDays[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

// Days returns the day count for a recognized range token, and whether the
// token is recognized.
func Days(token string) (int, bool) {
	n, ok := rangeDays[strings.ToLower(strings.TrimSpace(token))]
	return n, ok
}

// Parse converts raw message text into a Command. botUserID is the bot's own
// Slack user ID, used to recognize the leading mention; requireMention rejects
// messages that do not open with one. Parse returns either a valid Command or
// a ParseError, never both and never a panic.
func Parse(text, botUserID string, requireMention bool) (*Command, *ParseError) {
	tokens := strings.Fields(text)

	mentioned := false
	if len(tokens) > 0 && isBotMention(tokens[0], botUserID) {
		mentioned = true
		tokens = tokens[1:]
	}
	if requireMention && !mentioned {
		return nil, &ParseError{Reason: ReasonNotAddressed, Detail: "message does not address the bot"}
	}

	if len(tokens) < 2 ||
		!strings.EqualFold(tokens[0], "capture") ||
		!strings.EqualFold(tokens[1], "report") {
		return nil, &ParseError{Reason: ReasonMissingKeywords, Detail: "missing 'capture report' keywords"}
	}
	rest := tokens[2:]

	// A well-formed tail is at least a one-word name plus a range token.
	if len(rest) < 2 {
		return nil, &ParseError{Reason: ReasonTooFewTokens, Detail: "expected a report name and a date range"}
	}

	// Greedily match the longest recognized suffix as the range token, so
	// multi-word ranges win over a single trailing word.
	rangeTok := ""
	nameTokens := rest
	for n := min(maxRangeWords, len(rest)); n >= 1; n-- {
		candidate := strings.ToLower(strings.Join(rest[len(rest)-n:], " "))
		if _, ok := rangeDays[candidate]; ok {
			rangeTok = candidate
			nameTokens = rest[:len(rest)-n]
			break
		}
	}
	if rangeTok == "" {
		return nil, &ParseError{
			Reason: ReasonBadRange,
			Detail: fmt.Sprintf("unrecognized date range in %q", strings.Join(rest, " ")),
		}
	}
	if len(nameTokens) == 0 {
		return nil, &ParseError{Reason: ReasonEmptyReport, Detail: "report name is empty"}
	}

	return &Command{
		Report: strings.Join(nameTokens, " "),
		Range:  rangeTok,
	}, nil
}

// isBotMention reports whether tok addresses the bot. Slack delivers mentions
// escaped as <@U123ABC>; a plain @name prefix is accepted for gateways that
// unescape, and any mention form counts when botUserID is unknown.
func isBotMention(tok, botUserID string) bool {
	tok = strings.TrimRight(tok, ":,")
	if strings.HasPrefix(tok, "<@") && strings.HasSuffix(tok, ">") {
		id := strings.TrimSuffix(strings.TrimPrefix(tok, "<@"), ">")
		// <@U123|display> carries an optional display name.
		if i := strings.IndexByte(id, '|'); i >= 0 {
			id = id[:i]
		}
		return botUserID == "" || id == botUserID
	}
	return strings.HasPrefix(tok, "@")
}
