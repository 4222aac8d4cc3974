// Package druginfo answers medicine lookups from a built-in reference
// catalogue.
package druginfo

import (
	"strings"
	"unicode/utf8"

	"github.com/soudan/casebook/internal/platform/apperr"
	"github.com/soudan/casebook/internal/platform/kana"
)

const minQueryLength = 2

type Drug struct {
	Name         string `json:"name"`
	GenericName  string `json:"generic_name,omitempty"`
	Category     string `json:"category,omitempty"`
	Effects      string `json:"effects,omitempty"`
	SideEffects  string `json:"side_effects,omitempty"`
	DosageForm   string `json:"dosage_form,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Warnings     string `json:"warnings,omitempty"`
	Source       string `json:"source"`
}

type Catalogue struct {
	drugs []Drug
}

// NewCatalogue returns the built-in catalogue.
func NewCatalogue() *Catalogue {
	drugs := make([]Drug, len(builtin))
	for i, d := range builtin {
		d.Manufacturer = "複数社"
		d.Source = sourceInternal
		drugs[i] = d
	}
	return &Catalogue{drugs: drugs}
}

func fold(s string) string {
	return strings.ToLower(kana.Normalize(s))
}

// unknown is returned for names the catalogue does not carry.
func unknown(name string) Drug {
	return Drug{
		Name:     name,
		Effects:  "※この薬品の詳細情報は登録されていません。薬剤師または医師にご確認ください。",
		Warnings: "※必ず医師の指示に従って服用してください。",
		Source:   sourceInternal,
	}
}

// Search matches query against name, generic name and category. With no
// match the result is a single placeholder entry for the query.
func (c *Catalogue) Search(query string) ([]Drug, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minQueryLength {
		return nil, apperr.Validation("検索キーワードは%d文字以上で入力してください", minQueryLength)
	}
	q := fold(query)
	var out []Drug
	for _, d := range c.drugs {
		if strings.Contains(fold(d.Name), q) || strings.Contains(fold(d.GenericName), q) || strings.Contains(fold(d.Category), q) {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return []Drug{unknown(query)}, nil
	}
	return out, nil
}

// Detail looks name up exactly, ignoring case and kana width.
func (c *Catalogue) Detail(name string) Drug {
	n := fold(name)
	for _, d := range c.drugs {
		if fold(d.Name) == n {
			return d
		}
	}
	return unknown(name)
}
