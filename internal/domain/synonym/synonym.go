// Package synonym expands free-text queries against a synonym table.
package synonym

import (
	"regexp"
	"strings"
)

// Entry is one synonym table row. Synonyms is a semicolon-separated term
// list. When Mutual is false only the first listed term is the keyword whose
// occurrences expand to the rest; when true any listed term expands to all
// the others.
type Entry struct {
	Synonyms string `json:"synonyms"`
	Mutual   bool   `json:"mutual"`
}

// Terms returns the trimmed, non-empty terms of the entry.
func (e Entry) Terms() []string {
	var out []string
	for _, t := range strings.Split(e.Synonyms, ";") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Patterns stripped from the lowercase working copy before tokenization, so
// field qualifiers and boolean operators never match synonym keys. Matching
// is done on the lowercase copy while the original query keeps its case, so
// uppercase AND/OR/NOT stay recognizable as operators in the output.
var (
	fieldCallPattern  = regexp.MustCompile(`\w+\([^)]*\)`)
	fieldValuePattern = regexp.MustCompile(`\w+:\S+`)
	exclusionPattern  = regexp.MustCompile(`(^|\s)-\S+`)
	operatorPattern   = regexp.MustCompile(`\b(and|or|not)\b`)
	parenPattern      = regexp.MustCompile(`[()]`)
)

// Expand rewrites query into an OR-expanded alternative honoring the table.
// Each matched word combination contributes one OR-branch layered onto the
// unmodified original: (original) OR (original with the combination replaced
// by an OR-group of its synonyms) OR ... . The original query is returned
// unchanged when nothing matches or the table is empty.
func Expand(query string, table []Entry) string {
	if strings.TrimSpace(query) == "" || len(table) == 0 {
		return query
	}

	tokens := rawTokens(query)
	if len(tokens) == 0 {
		return query
	}

	branches := []string{query}
	for _, combo := range combinations(tokens) {
		for _, entry := range table {
			group, ok := match(combo, entry)
			if !ok {
				continue
			}
			if branch, ok := replaceCombo(query, combo, group); ok {
				branches = append(branches, branch)
			}
		}
	}

	if len(branches) == 1 {
		return query
	}
	for i, b := range branches {
		branches[i] = "(" + b + ")"
	}
	return strings.Join(branches, " OR ")
}

// rawTokens strips query operators and field qualifiers from a lowercase
// copy and splits the remainder into words.
func rawTokens(query string) []string {
	raw := strings.ToLower(query)
	raw = fieldCallPattern.ReplaceAllString(raw, " ")
	raw = fieldValuePattern.ReplaceAllString(raw, " ")
	raw = exclusionPattern.ReplaceAllString(raw, " ")
	raw = operatorPattern.ReplaceAllString(raw, " ")
	raw = parenPattern.ReplaceAllString(raw, " ")
	return strings.Fields(raw)
}

// combinations generates every contiguous forward word combination: each
// single word, then each span greedily extended to the right, so multi-word
// terms like "united states" can match multi-word synonym keys.
func combinations(tokens []string) []string {
	var out []string
	for i := range tokens {
		for j := i; j < len(tokens); j++ {
			out = append(out, strings.Join(tokens[i:j+1], " "))
		}
	}
	return out
}

// match reports whether combo matches entry and returns the OR-group of the
// remaining synonyms. One-way entries match only their first term;
// mutual entries match any term, with the matched term itself removed.
func match(combo string, entry Entry) (string, bool) {
	terms := entry.Terms()
	if len(terms) < 2 {
		return "", false
	}

	matched := -1
	if entry.Mutual {
		for i, t := range terms {
			if strings.EqualFold(t, combo) {
				matched = i
				break
			}
		}
	} else if strings.EqualFold(terms[0], combo) {
		matched = 0
	}
	if matched < 0 {
		return "", false
	}

	var alts []string
	for i, t := range terms {
		if i == matched {
			continue
		}
		alts = append(alts, quoteIfMultiWord(t))
	}
	if len(alts) == 0 {
		return "", false
	}
	return "(" + strings.Join(alts, " OR ") + ")", true
}

// replaceCombo substitutes the first word-aligned case-insensitive occurrence
// of combo in the original query with group, preserving the original's case
// elsewhere. Occurrences inside field qualifiers, field calls or exclusions
// are skipped: those regions never tokenize, so a match there would rewrite
// text the tokenizer deliberately left alone.
func replaceCombo(query, combo, group string) (string, bool) {
	pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(combo) + `\b`)
	if err != nil {
		return "", false
	}
	spans := protectedSpans(query)
	for _, loc := range pattern.FindAllStringIndex(query, -1) {
		if overlapsAny(spans, loc[0], loc[1]) {
			continue
		}
		return query[:loc[0]] + group + query[loc[1]:], true
	}
	return "", false
}

// protectedSpans returns the byte ranges of field calls, field qualifiers and
// exclusions in the query.
func protectedSpans(query string) [][]int {
	lower := strings.ToLower(query)
	var spans [][]int
	for _, p := range []*regexp.Regexp{fieldCallPattern, fieldValuePattern, exclusionPattern} {
		spans = append(spans, p.FindAllStringIndex(lower, -1)...)
	}
	return spans
}

func overlapsAny(spans [][]int, from, to int) bool {
	for _, s := range spans {
		if from < s[1] && to > s[0] {
			return true
		}
	}
	return false
}

func quoteIfMultiWord(term string) string {
	if strings.ContainsRune(term, ' ') {
		return `"` + term + `"`
	}
	return term
}
