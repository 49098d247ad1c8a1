package knowledge

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/termlens/internal/core/domain"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Relevance weights for Search.
const (
	explicitMentionScore = 200
	exactNameScore       = 150
	nameWordScore        = 60
	companyWordScore     = 40
	typeWordScore        = 25
	historyBoostScore    = 30
	sameCompanyScore     = 10

	minQueryWordLen = 3
	maxMatches      = 3
	maxExplicit     = 2
)

type category struct {
	ID      domain.ProductCategory `yaml:"id"`
	Label   string                 `yaml:"label"`
	Aliases []string               `yaml:"aliases"`
}

type adviceTemplate struct {
	ID       string   `yaml:"id"`
	Title    string   `yaml:"title"`
	Triggers []string `yaml:"triggers"`
	Tips     []string `yaml:"tips"`
}

type explicitMention struct {
	Phrases []string `yaml:"phrases"`
	Product string   `yaml:"product"`
}

type catalog struct {
	Categories       []category        `yaml:"categories"`
	BrowseIntents    []string          `yaml:"browse_intents"`
	AdviceIntents    []string          `yaml:"advice_intents"`
	Advice           []adviceTemplate  `yaml:"advice"`
	ExplicitMentions []explicitMention `yaml:"explicit_mentions"`
	Products         []domain.Product  `yaml:"products"`
}

// Base is the immutable product and advice catalog. All methods are safe for
// concurrent use and never mutate state.
type Base struct {
	cat    catalog
	bySlug map[string]int
}

// Load parses the catalog embedded in the binary.
func Load() (*Base, error) {
	return Parse(embeddedCatalog)
}

// LoadFile parses a catalog from disk, falling back to the embedded one when path is empty.
func LoadFile(path string) (*Base, error) {
	if strings.TrimSpace(path) == "" {
		return Load()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Base, error) {
	var cat catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse knowledge catalog: %w", err)
	}

	bySlug := make(map[string]int, len(cat.Products))
	for i, p := range cat.Products {
		if p.Slug == "" || p.Name == "" {
			return nil, fmt.Errorf("knowledge catalog: product %d needs slug and name", i)
		}
		if _, dup := bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("knowledge catalog: duplicate slug %q", p.Slug)
		}
		cat.Products[i].Name = strings.ToLower(p.Name)
		bySlug[p.Slug] = i
	}
	for _, m := range cat.ExplicitMentions {
		if _, ok := bySlug[m.Product]; !ok {
			return nil, fmt.Errorf("knowledge catalog: explicit mention of unknown product %q", m.Product)
		}
	}
	return &Base{cat: cat, bySlug: bySlug}, nil
}

// Products returns the catalog in file order, filtered by category when set.
func (b *Base) Products(c domain.ProductCategory) []domain.Product {
	out := make([]domain.Product, 0, len(b.cat.Products))
	for _, p := range b.cat.Products {
		if c == "" || p.Category == c {
			out = append(out, clone(p))
		}
	}
	return out
}

func (b *Base) Product(slug string) (domain.Product, bool) {
	i, ok := b.bySlug[slug]
	if !ok {
		return domain.Product{}, false
	}
	return clone(b.cat.Products[i]), true
}

func (b *Base) CategoryLabel(c domain.ProductCategory) string {
	for _, cat := range b.cat.Categories {
		if cat.ID == c {
			return cat.Label
		}
	}
	return string(c)
}

// BrowseCategory reports the category a query asks to list, such as "show me credit cards".
func (b *Base) BrowseCategory(query string) (domain.ProductCategory, bool) {
	norm := normalise(query)
	if !containsAny(norm, b.cat.BrowseIntents) {
		return "", false
	}
	return b.category(norm)
}

func (b *Base) category(norm string) (domain.ProductCategory, bool) {
	best, bestLen := domain.ProductCategory(""), 0
	for _, cat := range b.cat.Categories {
		for _, alias := range cat.Aliases {
			if containsPhrase(norm, alias) && len(alias) > bestLen {
				best, bestLen = cat.ID, len(alias)
			}
		}
	}
	return best, bestLen > 0
}

// Advice returns the tip list for a query that asks for guidance on loans,
// credit cards or insurance.
func (b *Base) Advice(query string) (string, bool) {
	norm := normalise(query)
	if !containsAny(norm, b.cat.AdviceIntents) {
		return "", false
	}
	for _, a := range b.cat.Advice {
		if !containsAny(norm, a.Triggers) {
			continue
		}
		var sb strings.Builder
		sb.WriteString(a.Title)
		sb.WriteString(":\n")
		for _, tip := range a.Tips {
			sb.WriteString("• ")
			sb.WriteString(tip)
			sb.WriteString("\n")
		}
		return strings.TrimRight(sb.String(), "\n"), true
	}
	return "", false
}

// Search ranks products against a query. Only products with a positive score are
// returned; at most three, or two when the query names a product explicitly.
func (b *Base) Search(query string, history []domain.ChatTurn) []domain.ProductMatch {
	lowerQuery := strings.ToLower(strings.TrimSpace(query))
	if lowerQuery == "" {
		return nil
	}
	norm := normalise(query)
	words := queryWords(norm)
	explicit := b.explicitProducts(norm)

	lastTurn := ""
	if len(history) > 0 {
		lastTurn = strings.ToLower(history[len(history)-1].Content)
	}

	var matches []domain.ProductMatch
	for _, p := range b.cat.Products {
		score := relevance(p, lowerQuery, words, explicit, lastTurn)
		if score > 0 {
			matches = append(matches, domain.ProductMatch{
				Product:   clone(p),
				Relevance: score,
				Specific:  p.Name == lowerQuery || mentions(explicit, p) || namesProduct(p, words),
			})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Relevance > matches[j].Relevance
	})

	limit := maxMatches
	if len(explicit) > 0 {
		limit = maxExplicit
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func relevance(p domain.Product, lowerQuery string, words []string, explicit []domain.Product, lastTurn string) int {
	score := 0
	company := strings.ToLower(p.Company)
	typ := strings.ToLower(p.Type)

	if len(explicit) > 0 {
		switch {
		case mentions(explicit, p):
			score += explicitMentionScore
		case sharesCompany(explicit, company):
			score += sameCompanyScore
		}
	}
	if p.Name == lowerQuery {
		score += exactNameScore
	}
	for _, w := range words {
		if strings.Contains(p.Name, w) {
			score += nameWordScore
			if lastTurn != "" && strings.Contains(lastTurn, w) {
				score += historyBoostScore
			}
		}
		if strings.Contains(company, w) {
			score += companyWordScore
		}
		if strings.Contains(typ, w) {
			score += typeWordScore
		}
	}
	return score
}

func (b *Base) explicitProducts(norm string) []domain.Product {
	var out []domain.Product
	for _, m := range b.cat.ExplicitMentions {
		if containsAny(norm, m.Phrases) {
			out = append(out, b.cat.Products[b.bySlug[m.Product]])
		}
	}
	return out
}

func mentions(explicit []domain.Product, p domain.Product) bool {
	for _, e := range explicit {
		if e.Slug == p.Slug || strings.Contains(p.Name, e.Name) || strings.Contains(e.Name, p.Name) {
			return true
		}
	}
	return false
}

// namesProduct reports whether a query word matches a product name token that
// is not also part of the product type.
func namesProduct(p domain.Product, words []string) bool {
	typeTokens := strings.Fields(normalise(p.Type))
	for _, token := range strings.Fields(normalise(p.Name)) {
		if slices.Contains(typeTokens, token) {
			continue
		}
		if slices.Contains(words, token) {
			return true
		}
	}
	return false
}

func sharesCompany(explicit []domain.Product, company string) bool {
	for _, e := range explicit {
		first, _, _ := strings.Cut(e.Name, " ")
		if first != "" && strings.Contains(company, first) {
			return true
		}
	}
	return false
}

// normalise lower-cases a query, replaces punctuation with spaces and pads it
// so phrases can be matched on word boundaries.
func normalise(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return " " + strings.Join(strings.Fields(mapped), " ") + " "
}

func queryWords(norm string) []string {
	var out []string
	for _, w := range strings.Fields(norm) {
		if len(w) >= minQueryWordLen {
			out = append(out, w)
		}
	}
	return out
}

func containsPhrase(norm, phrase string) bool {
	p := strings.TrimSpace(normalise(phrase))
	return p != "" && strings.Contains(norm, " "+p+" ")
}

func containsAny(norm string, phrases []string) bool {
	for _, phrase := range phrases {
		if containsPhrase(norm, phrase) {
			return true
		}
	}
	return false
}

func clone(p domain.Product) domain.Product {
	p.Pros = append([]string(nil), p.Pros...)
	p.Cons = append([]string(nil), p.Cons...)
	return p
}
