// Package models defines server-side data models persisted in the database.
package models

// Entities lists the tables the server persists to. The repository manager
// checks each of them after running migrations; add new tables here.
var Entities = []string{
	"users",
	"blogs",
	"sessions",
}
