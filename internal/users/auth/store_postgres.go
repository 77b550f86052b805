// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/epiclogue/internal/platform/database/schema"
	"github.com/taibuivan/epiclogue/internal/platform/dberr"
	"github.com/taibuivan/epiclogue/internal/platform/sec"
)

// # Postgres Account Store

// pgxQuerier is the subset of *pgxpool.Pool the store uses.
type pgxQuerier interface {
	Exec(context context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(context context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(context context.Context, sql string, arguments ...any) pgx.Row
}

// PostgresAccountStore implements [AccountStore] on the users.account table.
type PostgresAccountStore struct {
	pool pgxQuerier
}

// NewPostgresAccountStore creates a PostgreSQL implementation of [AccountStore].
func NewPostgresAccountStore(pool pgxQuerier) *PostgresAccountStore {
	return &PostgresAccountStore{pool: pool}
}

var accountTable = schema.UserAccount

/*
FindByID retrieves an account by primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Account: Hydrated entity
  - error: dberr.ErrNotFound or database errors
*/
func (store *PostgresAccountStore) FindByID(context context.Context, id string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		accountTable.ColumnList(), accountTable.Table, accountTable.ID)

	account, err := scanAccount(store.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_account_find_by_id")
	}
	return account, nil
}

/*
FindByEmail retrieves an account by its normalized email.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Account: Hydrated entity
  - error: dberr.ErrNotFound or database errors
*/
func (store *PostgresAccountStore) FindByEmail(context context.Context, email string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		accountTable.ColumnList(), accountTable.Table, accountTable.Email)

	account, err := scanAccount(store.pool.QueryRow(context, query, email))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_account_find_by_email")
	}
	return account, nil
}

// FindBySNSID retrieves the account bound to a provider identity.
func (store *PostgresAccountStore) FindBySNSID(context context.Context, snsID string, provider Provider) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		accountTable.ColumnList(), accountTable.Table, accountTable.SNSID, accountTable.SNSType)

	account, err := scanAccount(store.pool.QueryRow(context, query, snsID, string(provider)))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_account_find_by_sns_id")
	}
	return account, nil
}

/*
Create inserts a new account row.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: dberr.DuplicateError on account_email_key or account_sns_key, or database errors
*/
func (store *PostgresAccountStore) Create(context context.Context, account *Account) error {
	columns := accountTable.Columns()
	placeholders := make([]string, len(columns))
	for index := range columns {
		placeholders[index] = fmt.Sprintf("$%d", index+1)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		accountTable.Table, accountTable.ColumnList(), strings.Join(placeholders, ", "))

	if _, err := store.pool.Exec(context, query, accountValues(account)...); err != nil {
		return dberr.Wrap(err, "postgres_account_create")
	}
	return nil
}

/*
Update writes the non-empty parts of changes and returns the stored row.

Description: The SET list is built from the populated fields only, so
concurrent updates touching different columns do not overwrite each other.

Parameters:
  - context: context.Context
  - id: string
  - changes: Changes

Returns:
  - *Account: Updated entity
  - error: dberr.ErrNotFound, dberr.DuplicateError or database errors
*/
func (store *PostgresAccountStore) Update(context context.Context, id string, changes Changes) (*Account, error) {
	assignments, arguments := updateAssignments(changes)
	arguments = append(arguments, id)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $%d RETURNING %s`,
		accountTable.Table, strings.Join(assignments, ", "), accountTable.ID, len(arguments), accountTable.ColumnList())

	account, err := scanAccount(store.pool.QueryRow(context, query, arguments...))
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_account_update")
	}
	return account, nil
}

// Delete removes the account row.
func (store *PostgresAccountStore) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, accountTable.Table, accountTable.ID)

	tag, err := store.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "postgres_account_delete")
	}
	if tag.RowsAffected() == 0 {
		return dberr.Wrap(dberr.ErrNotFound, "postgres_account_delete")
	}
	return nil
}

// ListAll returns every account, oldest first.
func (store *PostgresAccountStore) ListAll(context context.Context) ([]*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s, %s`,
		accountTable.ColumnList(), accountTable.Table, accountTable.JoinedAt, accountTable.ID)

	rows, err := store.pool.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_account_list_all")
	}
	defer rows.Close()

	accounts := make([]*Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "postgres_account_list_all_scan")
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "postgres_account_list_all")
	}
	return accounts, nil
}

// # Row Mapping

// accountValues lists the fields of account in [schema.UserAccountTable.Columns] order.
func accountValues(account *Account) []any {
	snsType := account.SNSType
	if snsType == "" {
		snsType = ProviderNormal
	}

	return []any{
		account.ID,
		account.Email,
		account.Credential.Hash,
		account.Credential.Salt,
		account.Credential.Algorithm,
		account.Credential.Iterations,
		account.Credential.KeyLength,
		account.Nickname,
		account.ScreenID,
		account.IsConfirmed,
		account.ConfirmationToken,
		account.DeactivatedAt,
		int16(account.DisplayLanguage),
		languagesToInt16(account.AvailableLanguages),
		int16(account.Country),
		account.SNSID,
		string(snsType),
		account.Profile.Origin,
		account.Profile.Thumbnail,
		account.Banner.Origin,
		account.Banner.Thumbnail,
		account.Intro,
		account.TermsAcceptedAt,
		account.JoinedAt,
		account.UpdatedAt,
	}
}

func scanAccount(row pgx.Row) (*Account, error) {
	var (
		account         Account
		credential      sec.Credential
		displayLanguage int16
		languages       []int16
		country         int16
		snsType         string
	)

	err := row.Scan(
		&account.ID,
		&account.Email,
		&credential.Hash,
		&credential.Salt,
		&credential.Algorithm,
		&credential.Iterations,
		&credential.KeyLength,
		&account.Nickname,
		&account.ScreenID,
		&account.IsConfirmed,
		&account.ConfirmationToken,
		&account.DeactivatedAt,
		&displayLanguage,
		&languages,
		&country,
		&account.SNSID,
		&snsType,
		&account.Profile.Origin,
		&account.Profile.Thumbnail,
		&account.Banner.Origin,
		&account.Banner.Thumbnail,
		&account.Intro,
		&account.TermsAcceptedAt,
		&account.JoinedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.Credential = credential
	account.DisplayLanguage = Language(displayLanguage)
	account.AvailableLanguages = languagesFromInt16(languages)
	account.Country = int(country)
	account.SNSType = Provider(snsType)
	return &account, nil
}

// updateAssignments renders changes as "column = $n" pairs and their arguments.
// updatedat is always last so the SET list is never empty.
func updateAssignments(changes Changes) ([]string, []any) {
	var (
		assignments []string
		arguments   []any
	)

	set := func(column string, value any) {
		arguments = append(arguments, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(arguments)))
	}

	patch := changes.AccountPatch
	if patch.Nickname != nil {
		set(accountTable.Nickname, *patch.Nickname)
	}
	if patch.ScreenID != nil {
		set(accountTable.ScreenID, *patch.ScreenID)
	}
	if patch.Intro != nil {
		set(accountTable.Intro, *patch.Intro)
	}
	if patch.Profile != nil {
		set(accountTable.ProfileOrigin, patch.Profile.Origin)
		set(accountTable.ProfileThumbnail, patch.Profile.Thumbnail)
	}
	if patch.Banner != nil {
		set(accountTable.BannerOrigin, patch.Banner.Origin)
		set(accountTable.BannerThumbnail, patch.Banner.Thumbnail)
	}
	if patch.DisplayLanguage != nil {
		set(accountTable.DisplayLanguage, int16(*patch.DisplayLanguage))
	}
	if patch.AvailableLanguages != nil {
		set(accountTable.AvailableLanguages, languagesToInt16(*patch.AvailableLanguages))
	}
	if patch.Country != nil {
		set(accountTable.Country, int16(*patch.Country))
	}
	if patch.TermsAcceptedAt != nil {
		set(accountTable.TermsAcceptedAt, *patch.TermsAcceptedAt)
	}

	if changes.Credential != nil {
		set(accountTable.PasswordHash, changes.Credential.Hash)
		set(accountTable.PasswordSalt, changes.Credential.Salt)
		set(accountTable.PasswordAlgo, changes.Credential.Algorithm)
		set(accountTable.PasswordIterations, changes.Credential.Iterations)
		set(accountTable.PasswordKeyLen, changes.Credential.KeyLength)
	}
	if changes.Confirm {
		assignments = append(assignments,
			fmt.Sprintf("%s = TRUE", accountTable.IsConfirmed),
			fmt.Sprintf("%s = NULL", accountTable.ConfirmToken),
		)
	}
	if changes.DeactivatedAt != nil {
		set(accountTable.DeactivatedAt, *changes.DeactivatedAt)
	}

	set(accountTable.UpdatedAt, changes.UpdatedAt)
	return assignments, arguments
}

func languagesToInt16(languages []Language) []int16 {
	converted := make([]int16, len(languages))
	for index, language := range languages {
		converted[index] = int16(language)
	}
	return converted
}

func languagesFromInt16(values []int16) []Language {
	converted := make([]Language, len(values))
	for index, value := range values {
		converted[index] = Language(value)
	}
	return converted
}
