// Package translate renders user-facing messages in the host locale.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/message"
)

var (
	once    sync.Once
	printer *message.Printer
)

// setup picks the printer for the first usable host locale, falling
// back to en-US.
func setup() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("synacor: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{"en-US"}
	}

	printer = message.NewPrinter(message.MatchLanguage(locales...))
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	once.Do(setup)
	return printer.Sprintf(key, args...)
}
