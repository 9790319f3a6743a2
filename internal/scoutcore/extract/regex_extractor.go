package extract

import (
	"regexp"
	"strings"

	"scout/internal/scoutcore/facts"
)

// languageRule is one line-oriented regex rule: if line matches, group 1 is
// the symbol name recorded under kind.
type languageRule struct {
	pattern *regexp.Regexp
	kind    facts.SymbolKind
}

// RegexExtractor is the last-resort Extractor for source files in a
// language with neither a native parser nor a registered Tree-sitter
// grammar. It scans line-by-line with a generic rule set covering the
// common definition keywords across C-like, Python-like, and Rust-like
// syntaxes.
type RegexExtractor struct {
	rules        []languageRule
	importRule   *regexp.Regexp
	guardRule    *regexp.Regexp
	loopRule     *regexp.Regexp
	raiseRule    *regexp.Regexp
}

// NewRegexExtractor returns a fallback extractor with a broad, language-
// agnostic rule set.
func NewRegexExtractor() *RegexExtractor {
	return &RegexExtractor{
		rules: []languageRule{
			{regexp.MustCompile(`^\s*(?:export\s+)?(?:public\s+|private\s+|protected\s+)?(?:static\s+)?(?:async\s+)?(?:pub\s+)?(?:fn|func|function|def)\s+(\w+)`), facts.KindFunction},
			{regexp.MustCompile(`^\s*(?:export\s+)?(?:public\s+|private\s+|protected\s+)?(?:abstract\s+)?class\s+(\w+)`), facts.KindClass},
			{regexp.MustCompile(`^\s*(?:pub\s+)?(?:struct|interface|enum|trait)\s+(\w+)`), facts.KindClass},
			{regexp.MustCompile(`^\s*(?:export\s+)?const\s+(\w+)\s*=`), facts.KindConstant},
			{regexp.MustCompile(`^\s*(?:export\s+)?(?:let|var)\s+(\w+)\s*=`), facts.KindVariable},
		},
		importRule: regexp.MustCompile(`^\s*(?:import|from|use|require|#include)\s+[\w."'<>/:]+`),
		guardRule:  regexp.MustCompile(`^\s*(?:if|elif|else if)\b`),
		loopRule:   regexp.MustCompile(`^\s*(?:for|while)\b`),
		raiseRule:  regexp.MustCompile(`^\s*(?:raise|throw|panic!?)\b`),
	}
}

func (r *RegexExtractor) Language() string              { return "generic" }
func (r *RegexExtractor) SupportedExtensions() []string { return nil }

// Extract scans content line by line against the generic rule set. It has
// no notion of scopes, so every ControlFlowFact is attributed to a single
// "module" scope rather than per-function; this is strictly a best-effort
// fallback, not a substitute for a real parser or grammar.
func (r *RegexExtractor) Extract(path string, content []byte) (*facts.ModuleFacts, error) {
	mf := facts.NewModuleFacts(path)
	lines := strings.Split(string(content), "\n")

	cf := facts.ControlFlowFact{Scope: "module"}

	for i, line := range lines {
		lineNo := i + 1

		for _, rule := range r.rules {
			if m := rule.pattern.FindStringSubmatch(line); len(m) > 1 {
				mf.Symbols.Set(m[1], facts.SymbolFact{
					Kind:      rule.kind,
					Name:      m[1],
					DefinedAt: lineNo,
				})
				break
			}
		}

		if r.importRule.MatchString(line) {
			mf.Imports = append(mf.Imports, strings.TrimSpace(line))
		}
		if r.guardRule.MatchString(line) {
			cf.Guards = append(cf.Guards, strings.TrimSpace(line))
		}
		if r.loopRule.MatchString(line) {
			cf.Loops++
		}
		if r.raiseRule.MatchString(line) {
			cf.Raises = append(cf.Raises, strings.TrimSpace(line))
		}
	}

	if len(cf.Guards) > 0 || cf.Loops > 0 || len(cf.Raises) > 0 {
		mf.ControlFlow = append(mf.ControlFlow, cf)
	}

	names := mf.Symbols.Names()
	for i, line := range lines {
		lineNo := i + 1
		for _, name := range names {
			fact, _ := mf.Symbols.Get(name)
			if fact.DefinedAt == lineNo {
				continue
			}
			if containsWord(line, name) {
				fact.UsedAt = append(fact.UsedAt, lineNo)
				mf.Symbols.Set(name, fact)
			}
		}
	}

	return mf, nil
}

func containsWord(line, word string) bool {
	idx := strings.Index(line, word)
	if idx < 0 {
		return false
	}
	before := idx == 0 || !isIdentByte(line[idx-1])
	after := idx+len(word) >= len(line) || !isIdentByte(line[idx+len(word)])
	return before && after
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
