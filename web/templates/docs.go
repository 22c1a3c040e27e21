package templates

import (
	"context"
	"io"
	"sort"

	"capychat/web/format"
	"capychat/web/types"

	"github.com/a-h/templ"
)

// UncategorizedLabel heads FAQs without a category on the docs page.
const UncategorizedLabel = "미지정"

// CategoryGroup is one section of the public FAQ page.
type CategoryGroup struct {
	Name  string
	Items []types.FAQArticle
}

// GroupByCategory buckets FAQs by label, sections sorted by name with the
// uncategorized section last. Item order within a section is kept.
func GroupByCategory(items []types.FAQArticle) []CategoryGroup {
	index := map[string]int{}
	var groups []CategoryGroup
	for _, item := range items {
		name := UncategorizedLabel
		if item.Category != nil && *item.Category != "" {
			name = *item.Category
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, CategoryGroup{Name: name})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Name == UncategorizedLabel || groups[j].Name == UncategorizedLabel {
			return groups[j].Name == UncategorizedLabel && groups[i].Name != UncategorizedLabel
		}
		return groups[i].Name < groups[j].Name
	})
	return groups
}

// DocsPage renders the public FAQ page for a tenant.
func DocsPage(title string, groups []CategoryGroup) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		write := func(s string) error {
			_, err := io.WriteString(w, s)
			return err
		}

		if err := write(`<!doctype html><html lang="ko"><head><meta charset="utf-8">` +
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>` +
			templ.EscapeString(title) + `</title></head><body><main class="faq-docs"><h1>` +
			templ.EscapeString(title) + `</h1>`); err != nil {
			return err
		}

		if len(groups) == 0 {
			if err := write(`<p class="faq-empty">등록된 FAQ가 없습니다.</p>`); err != nil {
				return err
			}
		}

		for _, g := range groups {
			if err := write(`<section class="faq-category"><h2>` + templ.EscapeString(g.Name) + `</h2>`); err != nil {
				return err
			}
			for _, item := range g.Items {
				if err := faqItem(item).Render(ctx, w); err != nil {
					return err
				}
			}
			if err := write(`</section>`); err != nil {
				return err
			}
		}
		return write(`</main></body></html>`)
	})
}

func faqItem(item types.FAQArticle) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b []byte
		b = append(b, `<details class="faq-item"><summary>`...)
		b = append(b, templ.EscapeString(item.Title)...)
		b = append(b, `</summary><div class="faq-answer">`...)
		b = append(b, format.AnswerToHTML(item.Content)...)
		for _, m := range item.Media {
			url := templ.EscapeString(string(templ.URL(m.URL)))
			alt := templ.EscapeString(m.Name)
			if m.Kind == types.MediaVideo {
				b = append(b, `<video controls src="`+url+`" title="`+alt+`"></video>`...)
			} else {
				b = append(b, `<img src="`+url+`" alt="`+alt+`" loading="lazy">`...)
			}
		}
		b = append(b, `</div></details>`...)
		_, err := w.Write(b)
		return err
	})
}
