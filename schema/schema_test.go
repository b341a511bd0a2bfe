/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/suparena/eventgraph/errors"
)

const projectYAML = `
schemas:
  - name: EventProject
    timestamps: true
    fields:
      - {name: title, kind: string, required: true}
      - {name: description, kind: string, required: true}
      - {name: event, kind: objectId, ref: Event, required: true}
      - {name: createdBy, kind: objectId, ref: User, required: true}
      - {name: updatedBy, kind: objectId, ref: User, defaultFrom: createdBy}
      - {name: status, kind: enum, required: true, enum: [ACTIVE, BLOCKED, DELETED], default: ACTIVE}
`

func projectSchema(t *testing.T) *Schema {
	t.Helper()
	schemas, err := ParseBytes([]byte(projectYAML))
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	return schemas[0]
}

func TestPrepareAppliesDefaults(t *testing.T) {
	s := projectSchema(t)
	user := primitive.NewObjectID()
	event := primitive.NewObjectID()

	in := Document{"title": "Fall Gala", "description": "desc", "event": event, "createdBy": user}
	out, err := s.Prepare(in)
	require.NoError(t, err)

	assert.Equal(t, "ACTIVE", out["status"])
	assert.Equal(t, user, out["updatedBy"])
	_, touched := in["updatedBy"]
	assert.False(t, touched, "input document must not be modified")
	_, stamped := out[FieldCreatedAt]
	assert.False(t, stamped, "timestamps belong to the storage layer")
}

func TestPrepareKeepsExplicitValues(t *testing.T) {
	s := projectSchema(t)
	creator, editor := primitive.NewObjectID(), primitive.NewObjectID()

	out, err := s.Prepare(Document{
		"title": "t", "description": "d", "event": primitive.NewObjectID(),
		"createdBy": creator, "updatedBy": editor, "status": "BLOCKED",
	})
	require.NoError(t, err)
	assert.Equal(t, editor, out["updatedBy"])
	assert.Equal(t, "BLOCKED", out["status"])
}

func TestPrepareNullUpdatedBy(t *testing.T) {
	s := projectSchema(t)
	creator := primitive.NewObjectID()

	for name, v := range map[string]any{"nil": nil, "zero id": primitive.NilObjectID} {
		t.Run(name, func(t *testing.T) {
			out, err := s.Prepare(Document{
				"title": "t", "description": "d", "event": primitive.NewObjectID(),
				"createdBy": creator, "updatedBy": v,
			})
			require.NoError(t, err)
			assert.Equal(t, creator, out["updatedBy"])
		})
	}
}

func TestPrepareRejectsMissingRequired(t *testing.T) {
	s := projectSchema(t)

	_, err := s.Prepare(Document{"title": "t", "description": "", "event": primitive.NewObjectID()})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Equal(t, errors.CodeSchemaFailed, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "description")
	assert.Contains(t, err.Error(), "createdBy")
}

func TestPrepareRejectsStatusOutsideDomain(t *testing.T) {
	s := projectSchema(t)

	_, err := s.Prepare(Document{
		"title": "t", "description": "d", "event": primitive.NewObjectID(),
		"createdBy": primitive.NewObjectID(), "status": "ARCHIVED",
	})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, err.Error(), "status")
}

func TestPrepareRejectsMalformedReference(t *testing.T) {
	s := projectSchema(t)

	_, err := s.Prepare(Document{
		"title": "t", "description": "d", "event": "not-an-id",
		"createdBy": primitive.NewObjectID().Hex(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "event")
}

func TestValidatePatch(t *testing.T) {
	s := projectSchema(t)

	tests := []struct {
		name    string
		changes map[string]any
		wantErr string
	}{
		{name: "status change", changes: map[string]any{"status": "DELETED"}},
		{name: "clear updatedBy", changes: map[string]any{"updatedBy": nil}},
		{name: "bad status", changes: map[string]any{"status": "GONE"}, wantErr: "status"},
		{name: "blank title", changes: map[string]any{"title": ""}, wantErr: "title"},
		{name: "unknown field", changes: map[string]any{"color": "red"}, wantErr: "color"},
		{name: "timestamp", changes: map[string]any{"updatedAt": "now"}, wantErr: "updatedAt"},
		{name: "id", changes: map[string]any{"_id": primitive.NewObjectID()}, wantErr: "_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidatePatch(tt.changes)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsValidationError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBackfills(t *testing.T) {
	s := projectSchema(t)
	assert.Equal(t, []Backfill{
		{Field: "updatedBy", From: "createdBy"},
		{Field: "status", Value: "ACTIVE"},
	}, s.Backfills())

	refs := s.References()
	require.Len(t, refs, 3)
	assert.Equal(t, "Event", refs[0].Ref)
}

func TestParseRejectsInvalidDeclarations(t *testing.T) {
	tests := map[string]string{
		"unknown kind":      "schemas:\n  - name: A\n    fields:\n      - {name: a, kind: blob}\n",
		"enum without list": "schemas:\n  - name: A\n    fields:\n      - {name: a, kind: enum}\n",
		"bad default":       "schemas:\n  - name: A\n    fields:\n      - {name: a, kind: enum, enum: [X], default: Y}\n",
		"bad defaultFrom":   "schemas:\n  - name: A\n    fields:\n      - {name: a, kind: string, defaultFrom: b}\n",
		"storage field":     "schemas:\n  - name: A\n    fields:\n      - {name: createdAt, kind: string}\n",
		"unknown format":    "schemas:\n  - name: A\n    fields:\n      - {name: a, kind: string, format: shoe-size}\n",
		"unknown key":       "schemas:\n  - name: A\n    colour: red\n",
		"duplicate schema":  "schemas:\n  - name: A\n  - name: A\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestStringFormat(t *testing.T) {
	s := MustNew("User", true,
		Field{Name: "email", Kind: KindString, Required: true, Format: "email"},
	)
	assert.NoError(t, s.Validate(Document{"email": "ada@example.com"}))
	assert.Error(t, s.Validate(Document{"email": "nope"}))
}
