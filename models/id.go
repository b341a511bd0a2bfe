/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ID identifies an entity. It is a 12-byte object id, encoded as an ObjectID in BSON and as a
// 24-character hex string in JSON and DynamoDB.
type ID primitive.ObjectID

// NilID is the zero ID. A reference holding NilID is unset.
var NilID ID

// NewID generates a new ID.
func NewID() ID {
	return ID(primitive.NewObjectID())
}

// ParseID parses a 24-character hex string.
func ParseID(s string) (ID, error) {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return NilID, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(oid), nil
}

// MustParseID is ParseID for constants in tests and fixtures.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// ObjectID returns id as a BSON object id.
func (id ID) ObjectID() primitive.ObjectID {
	return primitive.ObjectID(id)
}

func (id ID) Hex() string {
	return primitive.ObjectID(id).Hex()
}

func (id ID) String() string {
	return id.Hex()
}

func (id ID) IsZero() bool {
	return id == NilID
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(id.Hex())
}

func (id *ID) UnmarshalJSON(b []byte) error {
	var s *string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*id = NilID
		return nil
	}
	parsed, err := ParseID(*s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id ID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if id.IsZero() {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(primitive.ObjectID(id))
}

func (id *ID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*id = NilID
		return nil
	case bsontype.ObjectID:
		*id = ID(raw.ObjectID())
		return nil
	case bsontype.String:
		parsed, err := ParseID(raw.StringValue())
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	return fmt.Errorf("cannot decode BSON %s into ID", t)
}

func (id ID) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	if id.IsZero() {
		return &types.AttributeValueMemberNULL{Value: true}, nil
	}
	return &types.AttributeValueMemberS{Value: id.Hex()}, nil
}

func (id *ID) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	switch v := av.(type) {
	case *types.AttributeValueMemberNULL:
		*id = NilID
		return nil
	case *types.AttributeValueMemberS:
		if v.Value == "" {
			*id = NilID
			return nil
		}
		parsed, err := ParseID(v.Value)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	}
	return fmt.Errorf("cannot decode DynamoDB %T into ID", av)
}
