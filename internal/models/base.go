package models

import "github.com/google/uuid"

// assignID gives a new row a random UUID unless the caller chose one.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
