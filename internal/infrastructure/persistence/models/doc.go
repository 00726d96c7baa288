// Package models holds the GORM row types and their mapping to domain types.
// The SQL files under migrations/ define the production schema; these models
// mirror them so AutoMigrate can build an equivalent schema for tests.
package models
