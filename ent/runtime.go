// Code generated by ent, DO NOT EDIT.

package ent

import (
	"time"

	"github.com/magicmentor/mentor/ent/episode"
	"github.com/magicmentor/mentor/ent/schema"
)

// The init function reads all schema descriptors with runtime code
// (default values, validators, hooks and policies) and stitches it
// to their package variables.
func init() {
	episodeFields := schema.Episode{}.Fields()
	_ = episodeFields
	// episodeDescCreatedAt is the schema descriptor for created_at field.
	episodeDescCreatedAt := episodeFields[4].Descriptor()
	// episode.DefaultCreatedAt holds the default value on creation for the created_at field.
	episode.DefaultCreatedAt = episodeDescCreatedAt.Default.(func() time.Time)
}
