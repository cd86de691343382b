package slintrust

import "time"

type Modelable interface {
	Exists() bool
}

// A Model is the essential data points for UUID-keyed records,
// indicating when a record was created and last updated.
//
// Embed it at the top of a table struct to pick up the conventional
// id, created_at and updated_at columns.
type Model struct {
	ID        string    `db:"id" slint:"uuid" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (m Model) Exists() bool { return m.ID != "" }
