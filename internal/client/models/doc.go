// Package models defines the typed records stored in the local database and
// carried inside sync snapshots. Rows are validated with go-playground
// validator tags before they cross the Local Store boundary; client-created
// rows go through the New* constructors.
package models
