// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid issues account identifiers.

Identifiers are UUID version 7 strings: time-ordered, so new accounts append to
the end of the primary-key index in PostgreSQL and sort by creation in MongoDB.
*/
package uuid

import "github.com/google/uuid"

// New returns a fresh UUIDv7 string.
//
// It panics only if the system entropy source fails, which leaves the process
// unable to issue any secret either.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("uuid: entropy source failed: " + err.Error())
	}
	return id.String()
}
