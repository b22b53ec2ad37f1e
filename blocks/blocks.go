// Package blocks models the polymorphic page-block graph. Each block row
// carries a collection tag and an item payload whose shape depends on the
// tag; this package exposes them as a tagged union while keeping the raw
// payload available for passthrough fields.
package blocks

import (
	"sort"
)

// Known collection tags.
const (
	CollectionRichText = "block_richtext"
	CollectionGallery  = "block_gallery"
	CollectionHero     = "block_hero"
	CollectionPricing  = "block_pricing"
	CollectionPosts    = "block_posts"
	CollectionForm     = "block_form"
)

// Item is the variant payload of a block. Concrete types are RichText,
// Gallery, Hero, Pricing, Posts, Form, and Unsupported.
type Item interface {
	// Tag returns the collection tag that selected this variant.
	Tag() string
}

// Block is one entry of a page's block list.
type Block struct {
	ID         string
	Collection string
	Sort       int
	HideBlock  bool
	Background string
	// Raw is the merged item payload exactly as the store returned it.
	Raw map[string]any
	// Item is the typed view of Raw, selected by Collection.
	Item Item
}

// RichText is a markdown/HTML text section.
type RichText struct {
	ID        string
	Tagline   string
	Headline  string
	Content   string
	Alignment string
}

func (RichText) Tag() string { return CollectionRichText }

// GalleryItem is one image of a gallery.
type GalleryItem struct {
	ID   string
	File string
	Sort int
}

// Gallery is an image gallery section.
type Gallery struct {
	ID       string
	Tagline  string
	Headline string
	Items    []GalleryItem
}

func (Gallery) Tag() string { return CollectionGallery }

// Button links to a page, a post, or an external URL.
type Button struct {
	ID            string
	Label         string
	Variant       string
	URL           string
	Type          string
	PagePermalink string
	PostSlug      string
}

// Hero is a leading banner section.
type Hero struct {
	ID          string
	Tagline     string
	Headline    string
	Description string
	Layout      string
	Image       string
	Buttons     []Button
}

func (Hero) Tag() string { return CollectionHero }

// PricingCard is one tier of a pricing table.
type PricingCard struct {
	ID            string
	Title         string
	Description   string
	Price         string
	Badge         string
	Features      []string
	IsHighlighted bool
	Button        *Button
}

// Pricing is a pricing table section.
type Pricing struct {
	ID       string
	Tagline  string
	Headline string
	Cards    []PricingCard
}

func (Pricing) Tag() string { return CollectionPricing }

// Posts is a listing section that renders records from another collection.
// Items and TotalPages are populated by assembly-time enrichment.
type Posts struct {
	ID         string
	Tagline    string
	Headline   string
	Collection string
	Limit      int
	Items      []map[string]any
	TotalPages int
}

func (Posts) Tag() string { return CollectionPosts }

// FormField is one input of a form definition.
type FormField struct {
	ID          string
	Name        string
	Type        string
	Label       string
	Placeholder string
	Help        string
	Validation  string
	Width       string
	Choices     []any
	Required    bool
	Sort        int
}

// FormDefinition is the reusable form referenced by a form block.
type FormDefinition struct {
	ID                 string
	Title              string
	SubmitLabel        string
	SuccessMessage     string
	OnSuccess          string
	SuccessRedirectURL string
	IsActive           bool
	Fields             []FormField
}

// Form embeds a form definition into a page.
type Form struct {
	ID       string
	Tagline  string
	Headline string
	Form     FormDefinition
}

func (Form) Tag() string { return CollectionForm }

// Unsupported preserves blocks whose collection tag this library does not
// know. Rendering layers decide whether to skip or handle them.
type Unsupported struct {
	Collection string
	Raw        map[string]any
}

func (u Unsupported) Tag() string { return u.Collection }

// Parse converts one store row into a Block.
func Parse(row map[string]any) Block {
	block := Block{
		ID:         str(row["id"]),
		Collection: str(row["collection"]),
		Sort:       integer(row["sort"]),
		HideBlock:  boolean(row["hide_block"]),
		Background: str(row["background"]),
	}
	if payload, ok := row["item"].(map[string]any); ok {
		block.Raw = payload
		block.Item = decodeItem(block.Collection, payload)
	} else {
		block.Item = Unsupported{Collection: block.Collection}
	}
	return block
}

// FromRecord extracts and parses a record's block list, dropping hidden
// blocks and ordering by sort. The store usually applies both through deep
// query directives already; this keeps the guarantees when it cannot.
func FromRecord(record map[string]any, field string) []Block {
	raw, ok := record[field].([]any)
	if !ok {
		return nil
	}
	out := make([]Block, 0, len(raw))
	for _, entry := range raw {
		row, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		block := Parse(row)
		if block.HideBlock {
			continue
		}
		out = append(out, block)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sort < out[j].Sort })
	return out
}

func decodeItem(tag string, payload map[string]any) Item {
	switch tag {
	case CollectionRichText:
		return RichText{
			ID:        str(payload["id"]),
			Tagline:   str(payload["tagline"]),
			Headline:  str(payload["headline"]),
			Content:   str(payload["content"]),
			Alignment: str(payload["alignment"]),
		}
	case CollectionGallery:
		return decodeGallery(payload)
	case CollectionHero:
		return decodeHero(payload)
	case CollectionPricing:
		return decodePricing(payload)
	case CollectionPosts:
		return Posts{
			ID:         str(payload["id"]),
			Tagline:    str(payload["tagline"]),
			Headline:   str(payload["headline"]),
			Collection: str(payload["collection"]),
			Limit:      integer(payload["limit"]),
		}
	case CollectionForm:
		return decodeForm(payload)
	default:
		return Unsupported{Collection: tag, Raw: payload}
	}
}

func decodeGallery(payload map[string]any) Gallery {
	gallery := Gallery{
		ID:       str(payload["id"]),
		Tagline:  str(payload["tagline"]),
		Headline: str(payload["headline"]),
	}
	for _, entry := range list(payload["items"]) {
		gallery.Items = append(gallery.Items, GalleryItem{
			ID:   str(entry["id"]),
			File: str(entry["directus_file"]),
			Sort: integer(entry["sort"]),
		})
	}
	sort.SliceStable(gallery.Items, func(i, j int) bool { return gallery.Items[i].Sort < gallery.Items[j].Sort })
	return gallery
}

func decodeHero(payload map[string]any) Hero {
	hero := Hero{
		ID:          str(payload["id"]),
		Tagline:     str(payload["tagline"]),
		Headline:    str(payload["headline"]),
		Description: str(payload["description"]),
		Layout:      str(payload["layout"]),
		Image:       str(payload["image"]),
	}
	if group, ok := payload["button_group"].(map[string]any); ok {
		for _, entry := range list(group["buttons"]) {
			hero.Buttons = append(hero.Buttons, decodeButton(entry))
		}
	}
	return hero
}

func decodePricing(payload map[string]any) Pricing {
	pricing := Pricing{
		ID:       str(payload["id"]),
		Tagline:  str(payload["tagline"]),
		Headline: str(payload["headline"]),
	}
	for _, entry := range list(payload["pricing_cards"]) {
		card := PricingCard{
			ID:            str(entry["id"]),
			Title:         str(entry["title"]),
			Description:   str(entry["description"]),
			Price:         str(entry["price"]),
			Badge:         str(entry["badge"]),
			IsHighlighted: boolean(entry["is_highlighted"]),
		}
		for _, feature := range listAny(entry["features"]) {
			if s, ok := feature.(string); ok {
				card.Features = append(card.Features, s)
			}
		}
		if raw, ok := entry["button"].(map[string]any); ok {
			button := decodeButton(raw)
			card.Button = &button
		}
		pricing.Cards = append(pricing.Cards, card)
	}
	return pricing
}

func decodeForm(payload map[string]any) Form {
	form := Form{
		ID:       str(payload["id"]),
		Tagline:  str(payload["tagline"]),
		Headline: str(payload["headline"]),
	}
	def, ok := payload["form"].(map[string]any)
	if !ok {
		return form
	}
	form.Form = FormDefinition{
		ID:                 str(def["id"]),
		Title:              str(def["title"]),
		SubmitLabel:        str(def["submit_label"]),
		SuccessMessage:     str(def["success_message"]),
		OnSuccess:          str(def["on_success"]),
		SuccessRedirectURL: str(def["success_redirect_url"]),
		IsActive:           boolean(def["is_active"]),
	}
	for _, entry := range list(def["fields"]) {
		form.Form.Fields = append(form.Form.Fields, FormField{
			ID:          str(entry["id"]),
			Name:        str(entry["name"]),
			Type:        str(entry["type"]),
			Label:       str(entry["label"]),
			Placeholder: str(entry["placeholder"]),
			Help:        str(entry["help"]),
			Validation:  str(entry["validation"]),
			Width:       str(entry["width"]),
			Choices:     listAny(entry["choices"]),
			Required:    boolean(entry["required"]),
			Sort:        integer(entry["sort"]),
		})
	}
	sort.SliceStable(form.Form.Fields, func(i, j int) bool {
		return form.Form.Fields[i].Sort < form.Form.Fields[j].Sort
	})
	return form
}

func decodeButton(entry map[string]any) Button {
	button := Button{
		ID:      str(entry["id"]),
		Label:   str(entry["label"]),
		Variant: str(entry["variant"]),
		URL:     str(entry["url"]),
		Type:    str(entry["type"]),
	}
	if page, ok := entry["page"].(map[string]any); ok {
		button.PagePermalink = str(page["permalink"])
	}
	if post, ok := entry["post"].(map[string]any); ok {
		button.PostSlug = str(post["slug"])
	}
	return button
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func boolean(v any) bool {
	b, _ := v.(bool)
	return b
}

func integer(v any) int {
	switch typed := v.(type) {
	case int:
		return typed
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	default:
		return 0
	}
}

func list(v any) []map[string]any {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if m, ok := entry.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func listAny(v any) []any {
	raw, _ := v.([]any)
	return raw
}
