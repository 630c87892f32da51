package moderation

import (
	"regexp"
	"strings"

	"github.com/iamwavecut/guardbot/internal/utils/text"
)

type Classification string

const (
	ClassCode        Classification = "code"
	ClassLinkSpam    Classification = "link_spam"
	ClassKeywordSpam Classification = "keyword_spam"
	ClassMedia       Classification = "media"
	ClassLink        Classification = "link"
	ClassClean       Classification = "clean"
)

const (
	MatchModeSubstring = "substring"
	MatchModeToken     = "token"

	codeFence    = "```"
	minCodeLines = 2
	minSpamLinks = 2
)

var (
	DefaultBadKeywords = []string{
		"заработок в день",
		"быстрый заработок",
		"ставки на спорт",
		"пассивный доход",
		"инвестиции без риска",
		"подпишись на мой канал",
	}
	DefaultBadDomains = []string{
		"t.me/joinchat",
		"bit.ly",
		"goo.gl",
		"tinyurl.com",
		"click.ru",
		"clck.ru",
	}

	urlPattern = regexp.MustCompile(`(?i)(https?://\S+|t\.me/\S+)`)

	codeKeywords = []string{"def ", "class ", "for ", "while ", "if ", "else:", "try:", "except"}
	codeMarkers  = []string{"{", "}", ";", "=>", "==", "::"}
)

// Matcher decides whether a text contains one of its configured phrases.
type Matcher interface {
	Match(content string) bool
}

// SubstringMatcher matches case-insensitive substrings anywhere in the text,
// including inside longer words.
type SubstringMatcher struct {
	phrases []string
}

func NewSubstringMatcher(phrases []string) *SubstringMatcher {
	m := &SubstringMatcher{}
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			m.phrases = append(m.phrases, p)
		}
	}
	return m
}

func (m *SubstringMatcher) Match(content string) bool {
	lower := strings.ToLower(content)
	for _, p := range m.phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// TokenMatcher matches whole normalized tokens, so a phrase never matches a
// fragment of a longer word.
type TokenMatcher struct {
	phrases [][]string
}

func NewTokenMatcher(phrases []string) *TokenMatcher {
	m := &TokenMatcher{}
	for _, p := range phrases {
		if tokens := text.Tokenize(p); len(tokens) > 0 {
			m.phrases = append(m.phrases, tokens)
		}
	}
	return m
}

func (m *TokenMatcher) Match(content string) bool {
	tokens := text.Tokenize(content)
	for _, p := range m.phrases {
		if text.ContainsTokens(tokens, p) {
			return true
		}
	}
	return false
}

func NewMatcher(mode string, phrases []string) Matcher {
	if mode == MatchModeToken {
		return NewTokenMatcher(phrases)
	}
	return NewSubstringMatcher(phrases)
}

// Classifier is stateless after construction and safe for concurrent use.
type Classifier struct {
	keywords Matcher
	domains  Matcher
}

func NewClassifier(keywords Matcher, badDomains []string) *Classifier {
	return &Classifier{
		keywords: keywords,
		domains:  NewSubstringMatcher(badDomains),
	}
}

// LooksLikeCode is a heuristic meant to keep code snippets away from the spam
// checks, which they would often trip with URLs or keyword-like lines.
func LooksLikeCode(content string) bool {
	if strings.Contains(content, codeFence) {
		return true
	}
	codeLines := 0
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if containsAny(line, codeKeywords) || containsAny(line, codeMarkers) {
			codeLines++
			if codeLines >= minCodeLines {
				return true
			}
		}
	}
	return false
}

func (c *Classifier) ContainsBadLink(content string) bool {
	if c.domains.Match(content) {
		return true
	}
	return len(urlPattern.FindAllString(content, minSpamLinks)) >= minSpamLinks
}

func (c *Classifier) ContainsBadKeywords(content string) bool {
	return c.keywords.Match(content)
}

// Classify returns the most specific label for the message. Code wins over
// the spam labels.
func (c *Classifier) Classify(ev MessageEvent) Classification {
	switch {
	case ev.Attachment != AttachmentNone:
		return ClassMedia
	case LooksLikeCode(ev.Text):
		return ClassCode
	case c.ContainsBadLink(ev.Text):
		return ClassLinkSpam
	case c.ContainsBadKeywords(ev.Text):
		return ClassKeywordSpam
	case ev.LinkCount > 0:
		return ClassLink
	default:
		return ClassClean
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
