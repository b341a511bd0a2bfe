/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package i18n

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/eventgraph/errors"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "en", c.Languages()[0])

	ctx := context.Background()
	assert.Equal(t, "User not found", c.Translate(ctx, "user.notFound"))
	assert.Equal(t, "Utilisateur introuvable", c.Translate(WithLanguage(ctx, "fr-CA,fr;q=0.9"), "user.notFound"))
	assert.Equal(t, "Usuario no encontrado", c.Translate(WithLanguage(ctx, "es-MX"), "user.notFound"))
}

func TestTranslateFallbacks(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	ctx := context.Background()

	// es has no request.invalid entry
	assert.Equal(t, "Invalid request", c.Translate(WithLanguage(ctx, "es"), "request.invalid"))
	assert.Equal(t, "Invalid request", c.Translate(WithLanguage(ctx, "ja"), "request.invalid"))
	assert.Equal(t, "Invalid request", c.Translate(WithLanguage(ctx, ";;;"), "request.invalid"))
	assert.Equal(t, "no.such.key", c.Translate(ctx, "no.such.key"))
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"msgs/de.yaml": {Data: []byte(`user.notFound: "Benutzer nicht gefunden"`)},
		"msgs/en.yaml": {Data: []byte(`user.notFound: "User not found"`)},
		"msgs/README":  {Data: []byte("ignored")},
	}
	c, err := Load(fsys, "msgs", "de")
	require.NoError(t, err)
	assert.Equal(t, []string{"de", "en"}, c.Languages())
	assert.Equal(t, "Benutzer nicht gefunden", c.Translate(context.Background(), "user.notFound"))

	_, err = Load(fsys, "msgs", "it")
	assert.Error(t, err)

	_, err = Load(fstest.MapFS{"msgs/en.yaml": {Data: []byte("- not a map")}}, "msgs", "en")
	assert.Error(t, err)
}

func TestCatalogSatisfiesErrorTranslator(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	var tr errors.Translator = c
	err = errors.UserNotFound.NotFound(WithLanguage(context.Background(), "fr"), tr, "createdBy")
	var nf *errors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Utilisateur introuvable", nf.Message)
	assert.Equal(t, errors.CodeUserNotFound, nf.Code)
	assert.Equal(t, "createdBy", nf.Param)

	assert.Equal(t, "k", Identity.Translate(context.Background(), "k"))
}
