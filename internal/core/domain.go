package core

import (
	"errors"
	"strings"
)

const (
	Housing        Category = "housing"
	Utilities      Category = "utilities"
	Groceries      Category = "groceries"
	Transportation Category = "transportation"
	Insurance      Category = "insurance"
	Healthcare     Category = "healthcare"
	Entertainment  Category = "entertainment"
	DiningOut      Category = "dining_out"
	Shopping       Category = "shopping"
	Subscriptions  Category = "subscriptions"
	Hobbies        Category = "hobbies"
	Education      Category = "education"
	Savings        Category = "savings"
	Investments    Category = "investments"
	DebtPayment    Category = "debt_payment"
	EmergencyFund  Category = "emergency_fund"
	Other          Category = "other"
)

const (
	BucketNone    Bucket = ""
	BucketNeeds   Bucket = "needs"
	BucketWants   Bucket = "wants"
	BucketSavings Bucket = "savings"
)

const (
	SeveritySuccess  Severity = "success"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

const (
	StatusGood    Status = "good"
	StatusFair    Status = "fair"
	StatusWarning Status = "warning"
)

type (
	// Category is a spending category. Free-text category names coming
	// from requests are normalised with ParseCategory.
	Category string

	// Bucket is one of the three 50/30/20 allocation groups.
	Bucket string

	Severity string

	// Status is the qualitative label attached to a score factor or bucket.
	Status string

	Recommendation struct {
		Type            Severity `json:"type"`
		Category        string   `json:"category"`
		Message         string   `json:"message"`
		SavingPotential float64  `json:"saving_potential"`
	}

	ScoreFactor struct {
		Name   string  `json:"name"`
		Score  float64 `json:"score"`
		Max    float64 `json:"max"`
		Status Status  `json:"status"`
	}

	Insight struct {
		Type Severity `json:"type"`
		Text string   `json:"text"`
	}
)

var ErrInvalidAmount = errors.New("invalid amount")

var buckets = map[Category]Bucket{
	Housing:        BucketNeeds,
	Utilities:      BucketNeeds,
	Groceries:      BucketNeeds,
	Transportation: BucketNeeds,
	Insurance:      BucketNeeds,
	Healthcare:     BucketNeeds,
	Entertainment:  BucketWants,
	DiningOut:      BucketWants,
	Shopping:       BucketWants,
	Subscriptions:  BucketWants,
	Hobbies:        BucketWants,
	Savings:        BucketSavings,
	Investments:    BucketSavings,
	DebtPayment:    BucketSavings,
	EmergencyFund:  BucketSavings,
}

// Categories lists every known category in declaration order.
var Categories = []Category{
	Housing, Utilities, Groceries, Transportation, Insurance, Healthcare,
	Entertainment, DiningOut, Shopping, Subscriptions, Hobbies, Education,
	Savings, Investments, DebtPayment, EmergencyFund, Other,
}

// ParseCategory normalises a category name ("Dining Out", "dining-out")
// and reports whether it is one of the known categories.
func ParseCategory(name string) (Category, bool) {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	c := Category(s)
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return c, false
}

// Bucket returns the allocation bucket of the category, or BucketNone for
// categories that do not count towards the 50/30/20 split.
func (c Category) Bucket() Bucket {
	return buckets[c]
}

func (c Category) String() string {
	return string(c)
}

// Label renders the category for humans: "dining_out" -> "Dining Out".
func (c Category) Label() string {
	return Title(strings.ReplaceAll(string(c), "_", " "))
}
