// Code generated by ent, DO NOT EDIT.

package predicate

import (
	"entgo.io/ent/dialect/sql"
)

// Episode is the predicate function for episode builders.
type Episode func(*sql.Selector)
