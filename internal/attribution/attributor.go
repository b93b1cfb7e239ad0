// Package attribution recovers the outlet that originally published a story
// from reporting markers in its title and description ("据新华社报道",
// "来源：央视新闻", a trailing "(人民日报)" and so on).
package attribution

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rules are the data the Attributor runs on. Patterns are tried in order and
// must capture the candidate name in group 1.
type Rules struct {
	Patterns []*regexp.Regexp
	// Stoplist holds generic or aggregator names that are never an outlet.
	Stoplist []string
	// VerbMarkers reject a candidate containing a reporting verb, which
	// means the pattern captured part of a sentence.
	VerbMarkers []string
}

// DefaultRules returns the built-in patterns, stoplist and verb markers.
func DefaultRules() Rules {
	return Rules{
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`据([^报道消息讯]{2,6})报道`),
			regexp.MustCompile(`([^报道消息讯]{2,6})消息`),
			regexp.MustCompile(`([^报道消息讯]{2,6})讯`),
			regexp.MustCompile(`来源[：:]\s*([^\s]{2,10})`),
			regexp.MustCompile(`[(（]([^()（）]{2,6})[)）]\s*$`),
		},
		Stoplist: []string{
			"记者", "编辑", "本报", "本网", "通讯员", "责任编辑", "网友",
			"新浪", "新浪网", "网易", "搜狐", "腾讯网", "凤凰网", "今日头条",
		},
		VerbMarkers: []string{"报道", "消息", "表示", "发布", "获悉"},
	}
}

// Attributor applies one Rules set. It is safe for concurrent use.
type Attributor struct {
	patterns []*regexp.Regexp
	stop     map[string]struct{}
	verbs    []string
}

// New builds an Attributor. Patterns keep their order; the first qualifying
// capture wins.
func New(r Rules) *Attributor {
	stop := make(map[string]struct{}, len(r.Stoplist))
	for _, s := range r.Stoplist {
		stop[s] = struct{}{}
	}
	return &Attributor{
		patterns: r.Patterns,
		stop:     stop,
		verbs:    r.VerbMarkers,
	}
}

// Attribute returns the first qualifying name captured by the patterns, or
// fallback. A candidate qualifies when it is at least two characters long,
// is not on the stoplist and contains no reporting verb.
func (a *Attributor) Attribute(title, description, fallback string) string {
	text := title + " " + description

	for _, re := range a.patterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if a.qualifies(candidate) {
			return candidate
		}
	}
	return fallback
}

func (a *Attributor) qualifies(candidate string) bool {
	if utf8.RuneCountInString(candidate) < 2 {
		return false
	}
	if _, stop := a.stop[candidate]; stop {
		return false
	}
	for _, v := range a.verbs {
		if strings.Contains(candidate, v) {
			return false
		}
	}
	return true
}
