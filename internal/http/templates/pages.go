// Package templates renders the HTML screens served next to the JSON API.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// SettingsPage shows whether OpenRouter credentials are stored. The key is never rendered unmasked.
func SettingsPage(data SettingsPageData) templ.Component {
	return layout("Keyword generator settings", data.FooterNote, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<section class="settings">`)
		b.WriteString(`<h1>OpenRouter credentials</h1>`)
		b.WriteString(`<dl>`)
		writeTerm(&b, "Namespace", data.Namespace)
		if data.Configured {
			writeTerm(&b, "API key", data.MaskedKey)
		} else {
			writeTerm(&b, "API key", "Not configured")
		}
		writeTerm(&b, "Model", data.Model)
		b.WriteString(`</dl>`)
		if !data.Configured {
			b.WriteString(`<p class="hint">Store a key with PUT /settings/secrets or set OPENROUTER_API_KEY.</p>`)
		}
		b.WriteString(`</section>`)

		_, err := io.WriteString(w, b.String())
		return err
	}))
}

// SessionPanel renders the keyword panel for an editing session.
func SessionPanel(data SessionPanelData) templ.Component {
	return layout("SEO keywords", data.FooterNote, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<section class="session" data-session="%s" data-document="%s">`,
			templ.EscapeString(data.SessionID), templ.EscapeString(data.DocumentID))
		b.WriteString(`<h1>SEO keywords</h1>`)

		b.WriteString(`<label>Keywords to keep <select name="maxKeywords">`)
		for _, option := range data.MaxKeywordOptions {
			selected := ""
			if option == data.MaxKeywords {
				selected = ` selected`
			}
			fmt.Fprintf(&b, `<option value="%d"%s>%d</option>`, option, selected, option)
		}
		b.WriteString(`</select></label>`)

		if data.IsLoading {
			b.WriteString(`<button type="button" disabled>Generating…</button>`)
		} else {
			b.WriteString(`<button type="button">Generate keywords</button>`)
		}

		if data.LastError != "" {
			fmt.Fprintf(&b, `<p class="error" role="alert">%s</p>`, templ.EscapeString(data.LastError))
		}

		switch {
		case !data.KeywordsSet:
			b.WriteString(`<p class="empty">No keywords set.</p>`)
		case len(data.Keywords) == 0:
			b.WriteString(`<p class="empty">Keyword list is empty.</p>`)
		default:
			b.WriteString(`<ul class="keywords">`)
			for _, keyword := range data.Keywords {
				fmt.Fprintf(&b, `<li>%s</li>`, templ.EscapeString(keyword))
			}
			b.WriteString(`</ul>`)
		}
		b.WriteString(`</section>`)

		_, err := io.WriteString(w, b.String())
		return err
	}))
}

// ErrorPage renders a minimal error screen.
func ErrorPage(data ErrorPageData) templ.Component {
	return layout(data.StatusLabel, "", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<section class="error-page"><h1>%s</h1><p>%s</p></section>`,
			templ.EscapeString(data.StatusLabel), templ.EscapeString(data.Message))
		return err
	}))
}

func layout(title, footer string, body templ.Component) templ.Component {
	if strings.TrimSpace(footer) == "" {
		footer = DefaultFooterNote
	}

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title></head><body><main>`,
			templ.EscapeString(title)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, `</main><footer><p>%s</p></footer></body></html>`, templ.EscapeString(footer))
		return err
	})
}

func writeTerm(b *strings.Builder, term, value string) {
	fmt.Fprintf(b, `<dt>%s</dt><dd>%s</dd>`, templ.EscapeString(term), templ.EscapeString(value))
}
