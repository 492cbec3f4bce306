package inertia

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// AppElementID is the id of the element carrying the boot page.
const AppElementID = "app"

// Shell is the default first-load document.
func Shell(page Page, pageJSON string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>`+templ.EscapeString(page.Component)+`</title></head><body>`+
			`<div id="`+AppElementID+`" data-page="`+templ.EscapeString(pageJSON)+`"></div>`+
			`</body></html>`)
		return err
	})
}
