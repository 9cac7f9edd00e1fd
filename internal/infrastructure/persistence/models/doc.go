// Package models contains GORM persistence models that map to database tables.
// Domain entities carry no ORM tags; each model converts to and from its
// entity with ToDomain and FromDomain, and repositories only ever touch models.
package models
