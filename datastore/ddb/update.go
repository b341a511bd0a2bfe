/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/eventgraph/datastore"
	"github.com/suparena/eventgraph/models"
	"github.com/suparena/eventgraph/schema"
)

// updateExpression accumulates the parts of an UpdateItem call.
type updateExpression struct {
	sets       []string
	removes    []string
	conditions []string
	names      map[string]string
	values     map[string]types.AttributeValue
}

func newUpdateExpression() *updateExpression {
	return &updateExpression{
		names:  make(map[string]string),
		values: make(map[string]types.AttributeValue),
	}
}

func (e *updateExpression) name(field string) string {
	for placeholder, existing := range e.names {
		if existing == field {
			return placeholder
		}
	}
	placeholder := fmt.Sprintf("#f%d", len(e.names))
	e.names[placeholder] = field
	return placeholder
}

func (e *updateExpression) value(av types.AttributeValue) string {
	placeholder := fmt.Sprintf(":v%d", len(e.values))
	e.values[placeholder] = av
	return placeholder
}

func (e *updateExpression) update() string {
	var parts []string
	if len(e.sets) > 0 {
		parts = append(parts, "SET "+strings.Join(e.sets, ", "))
	}
	if len(e.removes) > 0 {
		parts = append(parts, "REMOVE "+strings.Join(e.removes, ", "))
	}
	return strings.Join(parts, " ")
}

func (e *updateExpression) condition() string {
	return strings.Join(e.conditions, " AND ")
}

// buildUpdateExpression translates update into one UpdateItem expression. Default rules become
// if_not_exists operands so they are evaluated against the stored item inside the same write.
func buildUpdateExpression(update datastore.Update, now time.Time) (*updateExpression, error) {
	if update.IsEmpty() {
		return nil, errors.New("no updates provided")
	}
	e := newUpdateExpression()
	e.conditions = append(e.conditions, "attribute_exists(PK)")

	backfills := make(map[string]schema.Backfill, len(update.Backfills))
	for _, b := range update.Backfills {
		backfills[b.Field] = b
	}

	// Set values are marshaled up front so backfills can refer to a sibling being set in the
	// same call.
	assigned := make(map[string]types.AttributeValue, len(update.Set))
	for _, field := range sortedKeys(update.Set) {
		av, err := attributevalue.Marshal(update.Set[field])
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", field, err)
		}
		if _, isNull := av.(*types.AttributeValueMemberNULL); isNull {
			av = nil
		}
		assigned[field] = av
	}

	for _, field := range sortedKeys(update.Set) {
		av := assigned[field]
		if av != nil {
			e.sets = append(e.sets, fmt.Sprintf("%s = %s", e.name(field), e.value(av)))
			continue
		}
		b, hasDefault := backfills[field]
		if !hasDefault {
			e.removes = append(e.removes, e.name(field))
			continue
		}
		operand, err := e.defaultOperand(b, assigned)
		if err != nil {
			return nil, err
		}
		e.sets = append(e.sets, fmt.Sprintf("%s = %s", e.name(field), operand))
	}

	for _, b := range update.Backfills {
		if _, touched := update.Set[b.Field]; touched {
			continue
		}
		operand, err := e.defaultOperand(b, assigned)
		if err != nil {
			return nil, err
		}
		f := e.name(b.Field)
		e.sets = append(e.sets, fmt.Sprintf("%s = if_not_exists(%s, %s)", f, f, operand))
	}

	for _, field := range sortedKeys(update.Inc) {
		f := e.name(field)
		zero := e.value(&types.AttributeValueMemberN{Value: "0"})
		delta := e.value(&types.AttributeValueMemberN{Value: fmt.Sprintf("%d", update.Inc[field])})
		e.sets = append(e.sets, fmt.Sprintf("%s = if_not_exists(%s, %s) + %s", f, f, zero, delta))
	}

	for _, field := range sortedKeys(update.AddToSet) {
		elem, err := attributevalue.Marshal(update.AddToSet[field])
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", field, err)
		}
		f := e.name(field)
		empty := e.value(&types.AttributeValueMemberL{Value: []types.AttributeValue{}})
		list := e.value(&types.AttributeValueMemberL{Value: []types.AttributeValue{elem}})
		e.sets = append(e.sets, fmt.Sprintf("%s = list_append(if_not_exists(%s, %s), %s)", f, f, empty, list))
		e.conditions = append(e.conditions, fmt.Sprintf("NOT contains(%s, %s)", f, e.value(elem)))
	}

	stamp, err := attributevalue.Marshal(now)
	if err != nil {
		return nil, err
	}
	e.sets = append(e.sets, fmt.Sprintf("%s = %s", e.name(attrUpdatedAt), e.value(stamp)))

	for _, field := range sortedKeys(update.Condition) {
		av, err := attributevalue.Marshal(update.Condition[field])
		if err != nil {
			return nil, fmt.Errorf("marshal condition %s: %w", field, err)
		}
		e.conditions = append(e.conditions, fmt.Sprintf("%s = %s", e.name(field), e.value(av)))
	}
	for _, field := range sortedKeys(update.Exclude) {
		av, err := attributevalue.Marshal(update.Exclude[field])
		if err != nil {
			return nil, fmt.Errorf("marshal exclude %s: %w", field, err)
		}
		e.conditions = append(e.conditions, fmt.Sprintf("NOT contains(%s, %s)", e.name(field), e.value(av)))
	}
	return e, nil
}

// rewriteKeys keeps derived key attributes in step with the fields they are expanded from. A
// key whose source field is cleared is removed, so the item leaves that index. Primary key
// templates may only use the immutable id.
func (e *updateExpression) rewriteKeys(keys map[string]string, id models.ID, set map[string]any) error {
	source := map[string]types.AttributeValue{attrID: &types.AttributeValueMemberS{Value: id.Hex()}}
	for field, v := range set {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", field, err)
		}
		source[field] = av
	}

	for _, attr := range sortedKeys(keys) {
		var fields []string
		touched := false
		for _, m := range macroPattern.FindAllStringSubmatch(keys[attr], -1) {
			fields = append(fields, m[1])
			if _, ok := set[m[1]]; ok {
				touched = true
			}
		}
		if !touched {
			continue
		}
		if attr == "PK" || attr == "SK" {
			return fmt.Errorf("%s is derived from %v and cannot change", attr, fields)
		}
		if expanded, ok := expandMacros(map[string]string{attr: keys[attr]}, source)[attr]; ok {
			e.sets = append(e.sets, fmt.Sprintf("%s = %s", e.name(attr), e.value(&types.AttributeValueMemberS{Value: expanded})))
			continue
		}
		for _, f := range fields {
			if _, ok := set[f]; !ok && f != attrID {
				return fmt.Errorf("%s also depends on %s, which the update does not set", attr, f)
			}
		}
		e.removes = append(e.removes, e.name(attr))
	}
	return nil
}

// defaultOperand is the value a backfilled field takes: the sibling attribute, the sibling's
// new value when it is set in the same update, or the literal default.
func (e *updateExpression) defaultOperand(b schema.Backfill, assigned map[string]types.AttributeValue) (string, error) {
	if b.From != "" {
		if av, ok := assigned[b.From]; ok && av != nil {
			return e.value(av), nil
		}
		return e.name(b.From), nil
	}
	av, err := attributevalue.Marshal(b.Value)
	if err != nil {
		return "", fmt.Errorf("marshal default of %s: %w", b.Field, err)
	}
	return e.value(av), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
