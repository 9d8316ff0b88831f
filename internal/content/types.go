package content

import "time"

// BlogPost is a published article on the foundation site.
type BlogPost struct {
	Slug        string    `json:"slug" yaml:"slug"`
	Title       string    `json:"title" yaml:"title"`
	Author      string    `json:"author" yaml:"author"`
	PublishedAt time.Time `json:"publishedAt" yaml:"published_at"`
	Summary     string    `json:"summary" yaml:"summary"`
	Body        string    `json:"body" yaml:"body"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags"`
}

// AuditFinding is one item from a security review.
type AuditFinding struct {
	Severity string `json:"severity" yaml:"severity"`
	Title    string `json:"title" yaml:"title"`
	Status   string `json:"status" yaml:"status"`
}

// AuditReport summarizes a third-party security review.
type AuditReport struct {
	Auditor   string         `json:"auditor" yaml:"auditor"`
	Date      string         `json:"date" yaml:"date"`
	Scope     []string       `json:"scope" yaml:"scope"`
	Findings  []AuditFinding `json:"findings" yaml:"findings"`
	ReportURL string         `json:"reportUrl" yaml:"report_url"`
	Summary   string         `json:"summary" yaml:"summary"`
}

// Allocation is one slice of the token distribution.
type Allocation struct {
	Category string  `json:"category" yaml:"category"`
	Percent  float64 `json:"percent" yaml:"percent"`
	Tokens   uint64  `json:"tokens" yaml:"tokens"`
	Note     string  `json:"note,omitempty" yaml:"note"`
}

// Tokenomics describes the token supply and distribution.
type Tokenomics struct {
	TokenSymbol    string       `json:"tokenSymbol" yaml:"token_symbol"`
	TotalSupply    uint64       `json:"totalSupply" yaml:"total_supply"`
	TokenPriceUSD  float64      `json:"tokenPriceUsd" yaml:"token_price_usd"`
	Allocations    []Allocation `json:"allocations" yaml:"allocations"`
	VestingSummary string       `json:"vestingSummary" yaml:"vesting_summary"`
}

// RoadmapPhase is one stage of the project roadmap.
type RoadmapPhase struct {
	Name    string   `json:"name" yaml:"name"`
	Quarter string   `json:"quarter" yaml:"quarter"`
	Status  string   `json:"status" yaml:"status"` // completed | in_progress | planned
	Items   []string `json:"items" yaml:"items"`
}

// TeamMember is a foundation team profile.
type TeamMember struct {
	Name string `json:"name" yaml:"name"`
	Role string `json:"role" yaml:"role"`
	Bio  string `json:"bio" yaml:"bio"`
}

// DocSection is a heading plus body text inside a document.
type DocSection struct {
	Heading string `json:"heading" yaml:"heading"`
	Body    string `json:"body" yaml:"body"`
}

// Document is a long-form page such as the whitepaper or privacy policy.
type Document struct {
	Title     string       `json:"title" yaml:"title"`
	Version   string       `json:"version" yaml:"version"`
	UpdatedAt string       `json:"updatedAt" yaml:"updated_at"`
	Sections  []DocSection `json:"sections" yaml:"sections"`
}

// ScamRecord is an entry in the educational scam database.
type ScamRecord struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Category    string    `json:"category" yaml:"category"`
	Description string    `json:"description" yaml:"description"`
	URL         string    `json:"url,omitempty" yaml:"url"`
	ReportedAt  time.Time `json:"reportedAt" yaml:"reported_at"`
	Verified    bool      `json:"verified" yaml:"verified"`
}

// ScamReport is a community submission for the scam database.
type ScamReport struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	Contact     string `json:"contact,omitempty"`
}
