// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dberr_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taibuivan/epiclogue/internal/platform/dberr"
)

func TestWrap(t *testing.T) {
	mongoDuplicate := mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: epiclogue.accounts index: account_email_key dup key: { email: \"a@x.com\" }",
	}}}

	tests := []struct {
		name           string
		err            error
		wantNotFound   bool
		wantDuplicate  bool
		wantConstraint string
	}{
		{"pgx_no_rows", pgx.ErrNoRows, true, false, ""},
		{"mongo_no_documents", mongo.ErrNoDocuments, true, false, ""},
		{"pg_unique_violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "account_sns_key"}, false, true, "account_sns_key"},
		{"pg_other_error", &pgconn.PgError{Code: pgerrcode.UndefinedTable}, false, false, ""},
		{"mongo_duplicate_key", mongoDuplicate, false, true, "account_email_key"},
		{"opaque", errors.New("connection reset"), false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := dberr.Wrap(tt.err, "account_find")

			assert.Equal(t, tt.wantNotFound, errors.Is(err, dberr.ErrNotFound))
			assert.Equal(t, tt.wantDuplicate, errors.Is(err, dberr.ErrDuplicate))
			if tt.wantConstraint != "" {
				assert.True(t, dberr.IsDuplicateOf(err, tt.wantConstraint))
			}
			assert.Contains(t, err.Error(), "account_find")
		})
	}
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "account_find"))
}
