/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package i18n resolves message keys to localized strings. The locale travels in the request
// context as an Accept-Language value.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embedded embed.FS

// Translator resolves a message key for the locale carried by ctx. It always returns a string.
type Translator interface {
	Translate(ctx context.Context, key string) string
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(ctx context.Context, key string) string

// Translate calls f.
func (f TranslatorFunc) Translate(ctx context.Context, key string) string {
	return f(ctx, key)
}

// Identity returns keys unchanged.
var Identity Translator = TranslatorFunc(func(_ context.Context, key string) string { return key })

type languageKey struct{}

// WithLanguage stores an Accept-Language value (e.g. "fr-CA,fr;q=0.9,en;q=0.5") in ctx.
func WithLanguage(ctx context.Context, acceptLanguage string) context.Context {
	return context.WithValue(ctx, languageKey{}, acceptLanguage)
}

// LanguageFrom returns the Accept-Language value stored in ctx, if any.
func LanguageFrom(ctx context.Context) string {
	v, _ := ctx.Value(languageKey{}).(string)
	return v
}

// Catalog holds one flat key→message table per language.
type Catalog struct {
	tags     []language.Tag
	messages []map[string]string
	matcher  language.Matcher
}

// Load reads every <lang>.yaml file in dir of fsys. The default language is listed first so the
// matcher falls back to it; it must have a catalog.
func Load(fsys fs.FS, dir, defaultLanguage string) (*Catalog, error) {
	def, err := language.Parse(defaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("default language %q: %w", defaultLanguage, err)
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read catalogs: %w", err)
	}
	byTag := make(map[language.Tag]map[string]string)
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		tag, err := language.Parse(strings.TrimSuffix(e.Name(), ".yaml"))
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", e.Name(), err)
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		msgs := make(map[string]string)
		if err := yaml.Unmarshal(raw, &msgs); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", e.Name(), err)
		}
		byTag[tag] = msgs
	}
	if _, ok := byTag[def]; !ok {
		return nil, fmt.Errorf("no catalog for default language %s", def)
	}

	c := &Catalog{}
	c.add(def, byTag[def])
	var rest []language.Tag
	for tag := range byTag {
		if tag != def {
			rest = append(rest, tag)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].String() < rest[j].String() })
	for _, tag := range rest {
		c.add(tag, byTag[tag])
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

func (c *Catalog) add(tag language.Tag, msgs map[string]string) {
	c.tags = append(c.tags, tag)
	c.messages = append(c.messages, msgs)
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog built from the embedded locales with English as the fallback.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Load(embedded, "locales", "en")
	})
	return defaultCatalog, defaultErr
}

// New returns the embedded catalog with defaultLanguage as the fallback.
func New(defaultLanguage string) (*Catalog, error) {
	return Load(embedded, "locales", defaultLanguage)
}

// Languages lists the catalog languages, default first.
func (c *Catalog) Languages() []string {
	out := make([]string, len(c.tags))
	for i, t := range c.tags {
		out[i] = t.String()
	}
	return out
}

// Translate returns the message for key in the best language for ctx, then in the default
// language, then the key itself.
func (c *Catalog) Translate(ctx context.Context, key string) string {
	idx := c.match(LanguageFrom(ctx))
	if msg, ok := c.messages[idx][key]; ok {
		return msg
	}
	if msg, ok := c.messages[0][key]; ok {
		return msg
	}
	return key
}

func (c *Catalog) match(accept string) int {
	if accept == "" {
		return 0
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return 0
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return 0
	}
	return idx
}
