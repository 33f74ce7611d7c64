package enums

import (
	"fmt"
	"strings"
)

// SaleCategory is the internal code a sale or goal is stored under.
type SaleCategory string

const (
	CategoryGeneral     SaleCategory = "geral"
	CategoryProfitable  SaleCategory = "r_mais"
	CategoryPerfumery   SaleCategory = "perfumaria_r_mais"
	CategoryConvenience SaleCategory = "conveniencia_r_mais"
	CategoryHealth      SaleCategory = "saude"
)

type categoryInfo struct {
	display string
	title   string
}

// Categories lists the fixed dashboard categories in display order.
var Categories = []SaleCategory{
	CategoryGeneral,
	CategoryProfitable,
	CategoryPerfumery,
	CategoryConvenience,
	CategoryHealth,
}

var categoryInfos = map[SaleCategory]categoryInfo{
	CategoryGeneral:     {display: "geral", title: "Geral"},
	CategoryProfitable:  {display: "rentavel", title: "Rentáveis R+"},
	CategoryPerfumery:   {display: "perfumaria", title: "Perfumaria R+"},
	CategoryConvenience: {display: "conveniencia", title: "Conveniência R+"},
	CategoryHealth:      {display: "goodlife", title: "GoodLife"},
}

func (c SaleCategory) String() string {
	return string(c)
}

func (c SaleCategory) IsValid() bool {
	_, ok := categoryInfos[c]
	return ok
}

// Display returns the client-facing code, e.g. "rentavel" for r_mais.
func (c SaleCategory) Display() string {
	if info, ok := categoryInfos[c]; ok {
		return info.display
	}
	return string(c)
}

// Title returns the human label for the category.
func (c SaleCategory) Title() string {
	if info, ok := categoryInfos[c]; ok {
		return info.title
	}
	return string(c)
}

// CategoryFromCode resolves an internal code.
func CategoryFromCode(code string) (SaleCategory, error) {
	candidate := SaleCategory(strings.ToLower(strings.TrimSpace(code)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid category code %q", code)
}

// CategoryFromDisplay resolves a client-facing display code.
func CategoryFromDisplay(display string) (SaleCategory, error) {
	normalized := strings.ToLower(strings.TrimSpace(display))
	for _, c := range Categories {
		if categoryInfos[c].display == normalized {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid category %q", display)
}

// ParseCategory accepts either the internal or the display code.
func ParseCategory(value string) (SaleCategory, error) {
	if c, err := CategoryFromCode(value); err == nil {
		return c, nil
	}
	return CategoryFromDisplay(value)
}
