package contact

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	PasswordResetAnswer = "To reset your password, open the FrameLink sign-in page and select \"Forgot password\". " +
		"We will email you a reset link that stays valid for 24 hours. If it does not arrive, check your spam folder or contact support."
	PlanSummaryAnswer = "FrameLink offers a Basic plan for individual practitioners and a Clinic plan for teams with shared document storage. " +
		"Contact support for current pricing and volume discounts."
	UploadHelpAnswer = "You can upload PDF, Word, Excel, CSV, JSON, Markdown and plain-text documents up to 512MB from the Upload page. " +
		"Uploaded files are used to answer support questions."
	DefaultAnswer = "Thanks for your question. Our assistant is unavailable right now, so a member of the support team will follow up. " +
		"You can also reach us at support@framelink.example."
)

// Rule pairs a predicate over the question with a canned response.
type Rule struct {
	Name     string
	Match    func(question string) bool
	Response string
}

// KeywordRule matches when the question contains any keyword, case-insensitively.
func KeywordRule(name, response string, keywords ...string) Rule {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return Rule{
		Name:     name,
		Response: response,
		Match: func(question string) bool {
			q := strings.ToLower(question)
			for _, k := range lowered {
				if strings.Contains(q, k) {
					return true
				}
			}
			return false
		},
	}
}

// FallbackGenerator picks a canned answer. Rules are evaluated in order; first match wins.
type FallbackGenerator struct {
	rules           []Rule
	defaultResponse string
}

// NewFallbackGenerator builds a generator from rules and a catch-all response.
func NewFallbackGenerator(rules []Rule, defaultResponse string) *FallbackGenerator {
	return &FallbackGenerator{rules: rules, defaultResponse: defaultResponse}
}

// DefaultFallback returns the built-in rule set.
func DefaultFallback() *FallbackGenerator {
	return NewFallbackGenerator([]Rule{
		KeywordRule("password", PasswordResetAnswer, "password"),
		KeywordRule("pricing", PlanSummaryAnswer, "pricing", "price", "plan"),
		KeywordRule("upload", UploadHelpAnswer, "upload", "file"),
	}, DefaultAnswer)
}

// Answer returns the response of the first matching rule, or the default.
func (g *FallbackGenerator) Answer(question string) string {
	for _, rule := range g.rules {
		if rule.Match(question) {
			return rule.Response
		}
	}
	return g.defaultResponse
}

type fallbackFile struct {
	Rules []struct {
		Name     string   `yaml:"name"`
		Keywords []string `yaml:"keywords"`
		Response string   `yaml:"response"`
	} `yaml:"rules"`
	Default string `yaml:"default"`
}

// LoadFallback reads keyword rules from a YAML file. An empty path yields the built-in set.
func LoadFallback(path string) (*FallbackGenerator, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultFallback(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fallback rules: %w", err)
	}
	return ParseFallback(raw)
}

// ParseFallback decodes YAML rules.
func ParseFallback(raw []byte) (*FallbackGenerator, error) {
	var file fallbackFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode fallback rules: %w", err)
	}

	rules := make([]Rule, 0, len(file.Rules))
	for i, r := range file.Rules {
		if len(r.Keywords) == 0 || strings.TrimSpace(r.Response) == "" {
			return nil, fmt.Errorf("fallback rule %d (%q) needs keywords and a response", i, r.Name)
		}
		rules = append(rules, KeywordRule(r.Name, r.Response, r.Keywords...))
	}

	def := strings.TrimSpace(file.Default)
	if def == "" {
		def = DefaultAnswer
	}
	return NewFallbackGenerator(rules, def), nil
}
