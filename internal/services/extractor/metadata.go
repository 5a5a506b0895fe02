package extractor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"SmartShop/pkg/util"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
	FieldImage       Field = "image"
	FieldPrice       Field = "price"
)

var fieldOrder = []Field{FieldTitle, FieldDescription, FieldImage, FieldPrice}

// Page is what a strategy gets to look at.
type Page struct {
	Doc *goquery.Document
	Raw string

	products []map[string]interface{}
	parsedLD bool
}

// FieldStrategy yields a candidate for one field, or "" when it has nothing.
type FieldStrategy struct {
	Name    string
	Extract func(p *Page) string
}

// DefaultStrategies returns the per-field chains. Embedded JSON-LD product
// data is always consulted last.
func DefaultStrategies() map[Field][]FieldStrategy {
	return map[Field][]FieldStrategy{
		FieldTitle: {
			metaProperty("og:title"),
			selectorText("#productTitle"),
			itemprop("name"),
			{Name: "<title>", Extract: func(p *Page) string { return p.Doc.Find("title").First().Text() }},
			jsonLD("name", ldString("name")),
		},
		FieldDescription: {
			metaProperty("og:description"),
			metaName("description"),
			itemprop("description"),
			selectorText("#productDescription"),
			selectorText("#feature-bullets"),
			{Name: "readability", Extract: readableExcerpt},
			jsonLD("description", ldString("description")),
		},
		FieldImage: {
			metaProperty("og:image"),
			selectorAttr("#landingImage", "data-old-hires"),
			selectorAttr("#landingImage", "src"),
			selectorAttr("#imgBlkFront", "src"),
			itempropAttr("image", "src"),
			jsonLD("image", ldImage),
		},
		FieldPrice: {
			metaProperty("product:price:amount"),
			metaProperty("og:price:amount"),
			itempropAttr("price", "content"),
			selectorText("#priceblock_ourprice"),
			selectorText("#priceblock_dealprice"),
			selectorText(".a-price .a-offscreen"),
			selectorText("#corePrice_feature_div .a-offscreen"),
			jsonLD("offers", ldPrice),
		},
	}
}

func (e *Extractor) extractMetadata(doc *goquery.Document, raw string, out *Extraction) {
	p := &Page{Doc: doc, Raw: raw}
	targets := map[Field]*string{
		FieldTitle:       &out.Title,
		FieldDescription: &out.Description,
		FieldImage:       &out.Image,
		FieldPrice:       &out.Price,
	}
	for _, f := range fieldOrder {
		v, via := firstNonEmpty(p, e.fields[f])
		if v == "" {
			out.Logs = append(out.Logs, fmt.Sprintf("❔ No product %s found", f))
			continue
		}
		*targets[f] = v
		out.Logs = append(out.Logs, fmt.Sprintf("🏷️ Product %s from %s: %s", f, via, util.TruncateRunes(v, 80)))
	}
}

func firstNonEmpty(p *Page, chain []FieldStrategy) (string, string) {
	for _, s := range chain {
		if v := util.CollapseSpaces(s.Extract(p)); v != "" {
			return v, s.Name
		}
	}
	return "", ""
}

func metaProperty(prop string) FieldStrategy {
	return FieldStrategy{
		Name: "meta[" + prop + "]",
		Extract: func(p *Page) string {
			v, _ := p.Doc.Find(`meta[property="` + prop + `"]`).First().Attr("content")
			return v
		},
	}
}

func metaName(name string) FieldStrategy {
	return FieldStrategy{
		Name: "meta[name=" + name + "]",
		Extract: func(p *Page) string {
			v, _ := p.Doc.Find(`meta[name="` + name + `"]`).First().Attr("content")
			return v
		},
	}
}

func itemprop(prop string) FieldStrategy {
	return FieldStrategy{
		Name: "itemprop=" + prop,
		Extract: func(p *Page) string {
			s := p.Doc.Find(`[itemprop="` + prop + `"]`).First()
			if v, ok := s.Attr("content"); ok {
				return v
			}
			return s.Text()
		},
	}
}

func itempropAttr(prop, attr string) FieldStrategy {
	return FieldStrategy{
		Name: "itemprop=" + prop,
		Extract: func(p *Page) string {
			s := p.Doc.Find(`[itemprop="` + prop + `"]`).First()
			if v, ok := s.Attr(attr); ok {
				return v
			}
			v, _ := s.Attr("content")
			return v
		},
	}
}

func selectorText(sel string) FieldStrategy {
	return FieldStrategy{
		Name: sel,
		Extract: func(p *Page) string {
			return p.Doc.Find(sel).First().Text()
		},
	}
}

func selectorAttr(sel, attr string) FieldStrategy {
	return FieldStrategy{
		Name: sel + "@" + attr,
		Extract: func(p *Page) string {
			v, _ := p.Doc.Find(sel).First().Attr(attr)
			return v
		},
	}
}

func readableExcerpt(p *Page) string {
	article, err := readability.FromReader(strings.NewReader(p.Raw), nil)
	if err != nil {
		return ""
	}
	return article.Excerpt
}

func jsonLD(key string, get func(map[string]interface{}) string) FieldStrategy {
	return FieldStrategy{
		Name: "json-ld Product." + key,
		Extract: func(p *Page) string {
			for _, prod := range p.ldProducts() {
				if v := get(prod); v != "" {
					return v
				}
			}
			return ""
		},
	}
}

// ldProducts parses every JSON-LD block once and collects the Product nodes,
// including those nested in @graph arrays.
func (p *Page) ldProducts() []map[string]interface{} {
	if p.parsedLD {
		return p.products
	}
	p.parsedLD = true
	p.Doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var v interface{}
		if err := json.Unmarshal([]byte(s.Text()), &v); err != nil {
			return
		}
		p.products = collectProducts(v, p.products)
	})
	return p.products
}

func collectProducts(v interface{}, acc []map[string]interface{}) []map[string]interface{} {
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			acc = collectProducts(item, acc)
		}
	case map[string]interface{}:
		if isProduct(t["@type"]) {
			acc = append(acc, t)
		}
		if g, ok := t["@graph"]; ok {
			acc = collectProducts(g, acc)
		}
	}
	return acc
}

func isProduct(t interface{}) bool {
	switch v := t.(type) {
	case string:
		return v == "Product"
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "Product" {
				return true
			}
		}
	}
	return false
}

func ldString(key string) func(map[string]interface{}) string {
	return func(m map[string]interface{}) string {
		s, _ := m[key].(string)
		return s
	}
}

func ldImage(m map[string]interface{}) string {
	return imageURL(m["image"])
}

func imageURL(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []interface{}:
		for _, item := range t {
			if u := imageURL(item); u != "" {
				return u
			}
		}
	case map[string]interface{}:
		if u, ok := t["url"].(string); ok {
			return u
		}
		if u, ok := t["contentUrl"].(string); ok {
			return u
		}
	}
	return ""
}

func ldPrice(m map[string]interface{}) string {
	return offerPrice(m["offers"])
}

func offerPrice(v interface{}) string {
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			if p := offerPrice(item); p != "" {
				return p
			}
		}
	case map[string]interface{}:
		price := scalar(t["price"])
		if price == "" {
			price = scalar(t["lowPrice"])
		}
		if price == "" {
			return ""
		}
		if cur, ok := t["priceCurrency"].(string); ok && cur != "" {
			return cur + " " + price
		}
		return price
	}
	return ""
}

func scalar(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}
