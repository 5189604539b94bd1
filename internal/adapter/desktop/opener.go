// Package desktop talks to the user's desktop: the browser and the menu
// bar notifier app.
package desktop

import (
	"io"
	"strings"

	"github.com/pkg/browser"
)

// Opener opens URLs in the default browser and local paths with the
// default application.
type Opener struct{}

func NewOpener(out io.Writer) Opener {
	if out != nil {
		browser.Stdout = out
		browser.Stderr = out
	}
	return Opener{}
}

func (Opener) Open(target string) error {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return browser.OpenURL(target)
	}
	return browser.OpenFile(target)
}
