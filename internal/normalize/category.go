package normalize

import (
	"encoding/json"

	"fatura/internal/core"
)

var categoryFields = []field{
	{"id", []string{"id", "uuid"}},
	{"name", []string{"name", "nome"}},
	{"slug", []string{"slug"}},
	{"color", []string{"color", "cor"}},
	{"icon", []string{"icon", "icone"}},
	{"active", []string{"active", "is_active", "isActive", "ativo"}},
}

type categoryIn struct {
	ID     FlexString `json:"id"`
	Name   string     `json:"name"`
	Slug   string     `json:"slug"`
	Color  string     `json:"color"`
	Icon   string     `json:"icon"`
	Active FlexBool   `json:"active"`
}

type CategoryWire struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Color  string `json:"color,omitempty"`
	Icon   string `json:"icon,omitempty"`
	Active bool   `json:"active"`
}

// DecodeCategory reads a category. A missing slug is derived from the name.
func DecodeCategory(body []byte) (core.Category, error) {
	var in categoryIn
	if _, err := decodeCanonical(body, categoryFields, &in); err != nil {
		return core.Category{}, err
	}
	c := core.Category{
		ID:     in.ID.String(),
		Name:   in.Name,
		Slug:   in.Slug,
		Color:  in.Color,
		Icon:   in.Icon,
		Active: in.Active.Or(true),
	}
	if c.Slug == "" {
		c.Slug = core.Slugify(c.Name)
	}
	return c, nil
}

func DecodeCategories(body []byte) ([]core.Category, error) {
	items, err := decodeList(body)
	if err != nil {
		return nil, err
	}
	out := make([]core.Category, 0, len(items))
	for _, item := range items {
		c, err := DecodeCategory(item)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// PatchCategory applies a partial update. The slug is immutable and any
// slug in the patch is ignored.
func PatchCategory(existing core.Category, body []byte) (core.Category, error) {
	patch, err := canonicalize(body, categoryFields)
	if err != nil {
		return core.Category{}, err
	}
	delete(patch, "slug")
	base, err := toMap(CategoryToWire(existing))
	if err != nil {
		return core.Category{}, err
	}
	b, err := json.Marshal(merge(base, patch))
	if err != nil {
		return core.Category{}, err
	}
	c, err := DecodeCategory(b)
	if err != nil {
		return core.Category{}, err
	}
	c.ID = existing.ID
	c.Slug = existing.Slug
	return c, nil
}

func CategoryToWire(c core.Category) CategoryWire {
	return CategoryWire{ID: c.ID, Name: c.Name, Slug: c.Slug, Color: c.Color, Icon: c.Icon, Active: c.Active}
}

func CategoriesToWire(cats []core.Category) []CategoryWire {
	out := make([]CategoryWire, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryToWire(c))
	}
	return out
}
