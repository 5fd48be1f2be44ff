package analyze

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docsplit/internal/segment"
)

// Separators and punctuation stripped before keyword comparison. Titles
// write the same concept many ways ("A/B 테스팅", "AB 테스트"), so matching
// runs on collapsed uppercase text.
var separatorRe = regexp.MustCompile(`[\s\-_/·•.,;:()（）「」\[\]{}]`)

// intentRefRe picks round numbers out of intent prose, e.g. "137회 기출"
// or "128관리 출제".
var intentRefRe = regexp.MustCompile(`(\d{2,3})\s*(?:회|관리|응용|컴시응)`)

func normalize(s string) string {
	return strings.ToUpper(separatorRe.ReplaceAllString(s, ""))
}

// TopicMatch is one review topic that matched a question's keywords.
type TopicMatch struct {
	Gen         string
	Week        string
	Title       string
	Score       int
	IntentRef   bool
	TitleHits   int
	ContentHits int
}

// QuestionMatch holds the best-matching topics for one exam question.
// Skipped marks placeholder questions whose title was never extracted.
type QuestionMatch struct {
	Label   string
	Matches []TopicMatch
	Skipped bool
}

// RoundMatches is the match result for one exam round.
type RoundMatches struct {
	Round   int
	Results map[Key]QuestionMatch
}

// RoundSummary tallies one round's coverage. Direct counts questions whose
// best match hit the topic title, Indirect those matched only through the
// body text. Scorable excludes skipped placeholders.
type RoundSummary struct {
	Direct   int
	Indirect int
	Missed   int
	Scorable int
	Skipped  int
}

// MatchRound scores every topic against every question of one round.
//
// A title keyword hit scores 3, a body hit 1, and a topic qualifies with
// at least one title hit or two body hits. Intent references to the round
// are flagged separately and carry no score. At most five matches are kept
// per question, best first.
func MatchRound(topics []segment.TopicRecord, cat Catalog) RoundMatches {
	type prepared struct {
		title     string
		content   string
		intentRef bool
	}
	searches := make([]prepared, len(topics))
	for i, t := range topics {
		searches[i] = prepared{
			title:     normalize(t.QTitle),
			content:   normalize(t.Content),
			intentRef: intentReferencesRound(t.Intent, cat.Round),
		}
	}

	out := RoundMatches{Round: cat.Round, Results: make(map[Key]QuestionMatch, len(cat.Entries))}
	for key, entry := range cat.Entries {
		if placeholderOnly(entry.Terms) {
			out.Results[key] = QuestionMatch{Label: entry.Label, Skipped: true}
			continue
		}

		var matches []TopicMatch
		for i, t := range topics {
			titleHits, contentHits := 0, 0
			for _, term := range entry.Terms {
				nterm := normalize(term)
				if utf8.RuneCountInString(nterm) < 2 {
					continue
				}
				if strings.Contains(searches[i].title, nterm) {
					titleHits++
				} else if strings.Contains(searches[i].content, nterm) {
					contentHits++
				}
			}
			if titleHits < 1 && contentHits < 2 {
				continue
			}
			matches = append(matches, TopicMatch{
				Gen:         t.Gen,
				Week:        t.Week,
				Title:       capRunes(t.QTitle, 60),
				Score:       titleHits*3 + contentHits,
				IntentRef:   searches[i].intentRef,
				TitleHits:   titleHits,
				ContentHits: contentHits,
			})
		}
		sort.SliceStable(matches, func(a, b int) bool { return matches[a].Score > matches[b].Score })
		if len(matches) > 5 {
			matches = matches[:5]
		}
		out.Results[key] = QuestionMatch{Label: entry.Label, Matches: matches}
	}
	return out
}

// SortedKeys returns the result keys in (exam, session, number) order.
func (r RoundMatches) SortedKeys() []Key {
	keys := make([]Key, 0, len(r.Results))
	for k := range r.Results {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
	return keys
}

// Summary tallies the round by the best match of each question.
func (r RoundMatches) Summary() RoundSummary {
	var s RoundSummary
	for _, v := range r.Results {
		if v.Skipped {
			s.Skipped++
			continue
		}
		s.Scorable++
		switch {
		case len(v.Matches) == 0:
			s.Missed++
		case v.Matches[0].TitleHits >= 1:
			s.Direct++
		default:
			s.Indirect++
		}
	}
	return s
}

// Gap is an exam question no topic covered.
type Gap struct {
	Key   Key
	Label string
}

// Gaps returns the unmatched questions in key order, placeholders excluded.
func (r RoundMatches) Gaps() []Gap {
	var gaps []Gap
	for _, key := range r.SortedKeys() {
		v := r.Results[key]
		if !v.Skipped && len(v.Matches) == 0 {
			gaps = append(gaps, Gap{Key: key, Label: v.Label})
		}
	}
	return gaps
}

func placeholderOnly(terms []string) bool {
	for _, t := range terms {
		switch t {
		case "Q4", "Q5", "Q6":
		default:
			return false
		}
	}
	return true
}

func intentReferencesRound(intent string, round int) bool {
	if !strings.Contains(intent, strconv.Itoa(round)) || !strings.Contains(intent, "회") {
		return false
	}
	for _, m := range intentRefRe.FindAllStringSubmatch(intent, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n == round {
			return true
		}
	}
	return false
}

// TopicRef points a past exam round at a topic whose intent mentions it.
type TopicRef struct {
	Gen   string
	Week  string
	Title string
}

// IntentRefs collects round numbers mentioned in topic intents, keyed by
// round. Numbers outside the plausible 80..140 range are noise from years
// or counts and are dropped.
func IntentRefs(topics []segment.TopicRecord) map[int][]TopicRef {
	refs := make(map[int][]TopicRef)
	for _, t := range topics {
		for _, m := range intentRefRe.FindAllStringSubmatch(t.Intent, -1) {
			num, err := strconv.Atoi(m[1])
			if err != nil || num < 80 || num > 140 {
				continue
			}
			refs[num] = append(refs[num], TopicRef{
				Gen:   t.Gen,
				Week:  t.Week,
				Title: capRunes(t.QTitle, 60),
			})
		}
	}
	return refs
}

// UnexaminedTopic is a topic whose intent marks it as never asked yet.
type UnexaminedTopic struct {
	Gen     string
	Week    string
	Subject string
	Title   string
	Intent  string
}

// Unexamined returns the topics flagged 미출제 in their intent, in input
// order.
func Unexamined(topics []segment.TopicRecord) []UnexaminedTopic {
	var out []UnexaminedTopic
	for _, t := range topics {
		if !strings.Contains(t.Intent, "미출제") {
			continue
		}
		subj := t.Subject
		if subj == "" {
			subj = "UNKNOWN"
		}
		out = append(out, UnexaminedTopic{
			Gen:     t.Gen,
			Week:    t.Week,
			Subject: subj,
			Title:   capRunes(t.QTitle, 60),
			Intent:  capRunes(t.Intent, 100),
		})
	}
	return out
}

func capRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
