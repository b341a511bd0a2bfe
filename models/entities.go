/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package models

import (
	"fmt"
	"time"
)

// Entity names, used as registry keys and DynamoDB EntityType values.
const (
	EntityUser         = "User"
	EntityOrganization = "Organization"
	EntityEvent        = "Event"
	EntityEventProject = "EventProject"
	EntityPost         = "Post"
)

// User is referenced by createdBy/updatedBy fields everywhere.
type User struct {
	ID        ID        `bson:"_id" json:"_id" dynamodbav:"ID"`
	FirstName string    `bson:"firstName" json:"firstName" dynamodbav:"firstName"`
	LastName  string    `bson:"lastName" json:"lastName" dynamodbav:"lastName"`
	Email     string    `bson:"email" json:"email" dynamodbav:"email"`
	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt" dynamodbav:"createdAt,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt" dynamodbav:"updatedAt,omitempty"`
}

// Organization owns events and posts.
type Organization struct {
	ID          ID        `bson:"_id" json:"_id" dynamodbav:"ID"`
	Name        string    `bson:"name" json:"name" dynamodbav:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty" dynamodbav:"description,omitempty"`
	CreatedBy   ID        `bson:"createdBy" json:"createdBy" dynamodbav:"createdBy"`
	UpdatedBy   ID        `bson:"updatedBy,omitempty" json:"updatedBy" dynamodbav:"updatedBy,omitempty"`
	Admins      []ID      `bson:"admins,omitempty" json:"admins" dynamodbav:"admins,omitempty"`
	Members     []ID      `bson:"members,omitempty" json:"members" dynamodbav:"members,omitempty"`
	Status      Status    `bson:"status,omitempty" json:"status" dynamodbav:"status,omitempty"`
	CreatedAt   time.Time `bson:"createdAt,omitempty" json:"createdAt" dynamodbav:"createdAt,omitempty"`
	UpdatedAt   time.Time `bson:"updatedAt,omitempty" json:"updatedAt" dynamodbav:"updatedAt,omitempty"`
}

// Event belongs to an organization and groups event projects.
type Event struct {
	ID           ID        `bson:"_id" json:"_id" dynamodbav:"ID"`
	Title        string    `bson:"title" json:"title" dynamodbav:"title"`
	Description  string    `bson:"description" json:"description" dynamodbav:"description"`
	Organization ID        `bson:"organization" json:"organization" dynamodbav:"organization"`
	CreatedBy    ID        `bson:"createdBy" json:"createdBy" dynamodbav:"createdBy"`
	UpdatedBy    ID        `bson:"updatedBy,omitempty" json:"updatedBy" dynamodbav:"updatedBy,omitempty"`
	Status       Status    `bson:"status,omitempty" json:"status" dynamodbav:"status,omitempty"`
	CreatedAt    time.Time `bson:"createdAt,omitempty" json:"createdAt" dynamodbav:"createdAt,omitempty"`
	UpdatedAt    time.Time `bson:"updatedAt,omitempty" json:"updatedAt" dynamodbav:"updatedAt,omitempty"`
}

// EventProject is a unit of work inside an event.
type EventProject struct {
	ID          ID        `bson:"_id" json:"_id" dynamodbav:"ID"`
	Title       string    `bson:"title" json:"title" dynamodbav:"title"`
	Description string    `bson:"description" json:"description" dynamodbav:"description"`
	Event       ID        `bson:"event" json:"event" dynamodbav:"event"`
	CreatedBy   ID        `bson:"createdBy" json:"createdBy" dynamodbav:"createdBy"`
	UpdatedBy   ID        `bson:"updatedBy,omitempty" json:"updatedBy" dynamodbav:"updatedBy,omitempty"`
	Status      Status    `bson:"status,omitempty" json:"status" dynamodbav:"status,omitempty"`
	CreatedAt   time.Time `bson:"createdAt,omitempty" json:"createdAt" dynamodbav:"createdAt,omitempty"`
	UpdatedAt   time.Time `bson:"updatedAt,omitempty" json:"updatedAt" dynamodbav:"updatedAt,omitempty"`
}

// Post is an organization feed entry that users can like.
type Post struct {
	ID           ID        `bson:"_id" json:"_id" dynamodbav:"ID"`
	Text         string    `bson:"text" json:"text" dynamodbav:"text"`
	Organization ID        `bson:"organization" json:"organization" dynamodbav:"organization"`
	CreatedBy    ID        `bson:"createdBy" json:"createdBy" dynamodbav:"createdBy"`
	UpdatedBy    ID        `bson:"updatedBy,omitempty" json:"updatedBy" dynamodbav:"updatedBy,omitempty"`
	LikedBy      []ID      `bson:"likedBy,omitempty" json:"likedBy" dynamodbav:"likedBy,omitempty"`
	LikeCount    int       `bson:"likeCount" json:"likeCount" dynamodbav:"likeCount"`
	Status       Status    `bson:"status,omitempty" json:"status" dynamodbav:"status,omitempty"`
	CreatedAt    time.Time `bson:"createdAt,omitempty" json:"createdAt" dynamodbav:"createdAt,omitempty"`
	UpdatedAt    time.Time `bson:"updatedAt,omitempty" json:"updatedAt" dynamodbav:"updatedAt,omitempty"`
}

// LikedByUser reports whether user is in p.LikedBy.
func (p Post) LikedByUser(user ID) bool {
	for _, id := range p.LikedBy {
		if id == user {
			return true
		}
	}
	return false
}

// Referencer is a record holding identifiers of other entities in named fields.
type Referencer interface {
	Reference(field string) (ID, error)
}

func unknownReference(entity, field string) error {
	return fmt.Errorf("%s has no reference field %q", entity, field)
}

func (p EventProject) Reference(field string) (ID, error) {
	switch field {
	case "event":
		return p.Event, nil
	case "createdBy":
		return p.CreatedBy, nil
	case "updatedBy":
		return p.UpdatedBy, nil
	}
	return NilID, unknownReference(EntityEventProject, field)
}

func (o Organization) Reference(field string) (ID, error) {
	switch field {
	case "createdBy":
		return o.CreatedBy, nil
	case "updatedBy":
		return o.UpdatedBy, nil
	}
	return NilID, unknownReference(EntityOrganization, field)
}

func (e Event) Reference(field string) (ID, error) {
	switch field {
	case "organization":
		return e.Organization, nil
	case "createdBy":
		return e.CreatedBy, nil
	case "updatedBy":
		return e.UpdatedBy, nil
	}
	return NilID, unknownReference(EntityEvent, field)
}

func (p Post) Reference(field string) (ID, error) {
	switch field {
	case "organization":
		return p.Organization, nil
	case "createdBy":
		return p.CreatedBy, nil
	case "updatedBy":
		return p.UpdatedBy, nil
	}
	return NilID, unknownReference(EntityPost, field)
}
