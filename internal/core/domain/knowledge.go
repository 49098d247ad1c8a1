package domain

type ProductCategory string

const (
	CategoryCreditCard      ProductCategory = "credit_card"
	CategoryLoan            ProductCategory = "loan"
	CategoryHealthInsurance ProductCategory = "health_insurance"
	CategoryLifeInsurance   ProductCategory = "life_insurance"
	CategoryMutualFund      ProductCategory = "mutual_fund"
)

type Product struct {
	Slug     string          `json:"slug" yaml:"slug"`
	Name     string          `json:"name" yaml:"name"`
	Company  string          `json:"company" yaml:"company"`
	Type     string          `json:"type" yaml:"type"`
	Category ProductCategory `json:"category" yaml:"category"`
	Summary  string          `json:"summary" yaml:"summary"`
	Fees     string          `json:"fees,omitempty" yaml:"fees"`
	Pros     []string        `json:"pros,omitempty" yaml:"pros"`
	Cons     []string        `json:"cons,omitempty" yaml:"cons"`
}

type ProductMatch struct {
	Product   Product `json:"product"`
	Relevance int     `json:"relevance"`
	// Specific is set when the query names this product rather than only its
	// category, e.g. "hdfc home loan" versus "home loan".
	Specific bool `json:"specific"`
}

// Known reports whether c is one of the catalog categories.
func (c ProductCategory) Known() bool {
	switch c {
	case CategoryCreditCard, CategoryLoan, CategoryHealthInsurance, CategoryLifeInsurance, CategoryMutualFund:
		return true
	default:
		return false
	}
}
