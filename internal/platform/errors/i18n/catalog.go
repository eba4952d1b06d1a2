// Package i18n renders domain error codes as user-facing messages.
package i18n

import (
	"bytes"
	stderrors "errors"
	"strings"
	"sync"
	"text/template"

	apperrors "github.com/louisbranch/skirmish/internal/platform/errors"
	i18ncatalog "github.com/louisbranch/skirmish/internal/platform/i18n/catalog"
)

// errorsNamespace is the catalog namespace holding error templates.
const errorsNamespace = "errors"

// Catalog maps error codes to message templates for one locale.
type Catalog struct {
	locale    string
	messages  map[apperrors.Code]string
	templates sync.Map
}

var (
	catalogsMu sync.RWMutex
	catalogs   = map[string]*Catalog{}
)

// GetCatalog returns the catalog for locale, falling back to the base locale.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = i18ncatalog.BaseLocale
	}
	if c, ok := lookupCatalog(requested); ok {
		return c
	}

	resolved, messages := i18ncatalog.Default().NamespaceMessagesWithFallback(requested, errorsNamespace)
	if c, ok := lookupCatalog(resolved); ok {
		return c
	}
	codes := make(map[apperrors.Code]string, len(messages))
	for key, value := range messages {
		codes[apperrors.Code(key)] = value
	}
	return storeCatalogIfAbsent(resolved, NewCatalog(resolved, codes))
}

// NewCatalog creates a catalog holding a copy of messages.
func NewCatalog(locale string, messages map[apperrors.Code]string) *Catalog {
	cloned := make(map[apperrors.Code]string, len(messages))
	for code, msg := range messages {
		cloned[code] = msg
	}
	return &Catalog{locale: locale, messages: cloned}
}

// RegisterCatalog installs cat for locale. Meant for tests.
func RegisterCatalog(locale string, cat *Catalog) {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	catalogs[locale] = cat
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the template for code with metadata. The code itself is
// returned when no template exists, and the raw template when it fails.
func (c *Catalog) Format(code apperrors.Code, metadata map[string]string) string {
	raw, ok := c.messages[code]
	if !ok {
		return string(code)
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	tmpl, err := c.template(code, raw)
	if err != nil {
		return raw
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, metadata); err != nil {
		return raw
	}
	return buf.String()
}

func (c *Catalog) template(code apperrors.Code, raw string) (*template.Template, error) {
	if cached, ok := c.templates.Load(code); ok {
		return cached.(*template.Template), nil
	}
	tmpl, err := template.New(string(code)).Parse(raw)
	if err != nil {
		return nil, err
	}
	c.templates.Store(code, tmpl)
	return tmpl, nil
}

// Localize returns the user-facing message for err. Errors outside the
// domain taxonomy render as the unknown-error template.
func Localize(locale string, err error) string {
	cat := GetCatalog(locale)
	var domainErr *apperrors.Error
	if stderrors.As(err, &domainErr) {
		return cat.Format(domainErr.Code, domainErr.Metadata)
	}
	return cat.Format(apperrors.CodeUnknown, nil)
}

// Status converts err into a gRPC status error carrying its localized
// message. Non-domain errors map to an internal status.
func Status(locale string, err error) error {
	if err == nil {
		return nil
	}
	cat := GetCatalog(locale)
	var domainErr *apperrors.Error
	if !stderrors.As(err, &domainErr) {
		domainErr = apperrors.Wrap(apperrors.CodeUnknown, err.Error(), err)
	}
	return domainErr.ToGRPCStatus(cat.Locale(), cat.Format(domainErr.Code, domainErr.Metadata))
}

func lookupCatalog(locale string) (*Catalog, bool) {
	catalogsMu.RLock()
	defer catalogsMu.RUnlock()
	cat, ok := catalogs[locale]
	return cat, ok
}

func storeCatalogIfAbsent(locale string, candidate *Catalog) *Catalog {
	catalogsMu.Lock()
	defer catalogsMu.Unlock()
	if existing, ok := catalogs[locale]; ok {
		return existing
	}
	catalogs[locale] = candidate
	return candidate
}
