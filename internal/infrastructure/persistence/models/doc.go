// Package models contains GORM persistence models that map to database tables.
// Domain entities stay free of ORM tags; each model converts to and from its
// domain counterpart with ToDomain / FromDomain.
//
// Tables:
//   - identity.go: users, profiles
//   - offer.go: offers, offer_details
//   - order.go: orders
//   - review.go: reviews
package models
