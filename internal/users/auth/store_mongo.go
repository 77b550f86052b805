// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taibuivan/epiclogue/internal/platform/constants"
	"github.com/taibuivan/epiclogue/internal/platform/database/schema"
	"github.com/taibuivan/epiclogue/internal/platform/dberr"
	"github.com/taibuivan/epiclogue/internal/platform/sec"
)

// # Mongo Account Store

// mongoAccount is the stored document shape. Field names follow the JSON
// casing of the web client.
type mongoAccount struct {
	ID         string         `bson:"_id"`
	Email      string         `bson:"email"`
	Credential sec.Credential `bson:"credential"`

	Nickname          string     `bson:"nickname"`
	ScreenID          string     `bson:"screenId"`
	IsConfirmed       bool       `bson:"isConfirmed"`
	ConfirmationToken *string    `bson:"confirmToken"`
	DeactivatedAt     *time.Time `bson:"deactivatedAt"`

	DisplayLanguage    int   `bson:"displayLanguage"`
	AvailableLanguages []int `bson:"availableLanguages"`
	Country            int   `bson:"country"`

	// SNSID is omitted for password accounts so the partial index skips them.
	SNSID   *string `bson:"snsId,omitempty"`
	SNSType string  `bson:"snsType"`

	Profile Image  `bson:"profile"`
	Banner  Image  `bson:"banner"`
	Intro   string `bson:"intro"`

	JoinedAt        time.Time  `bson:"joinedAt"`
	TermsAcceptedAt *time.Time `bson:"termsAcceptedAt"`
	UpdatedAt       time.Time  `bson:"updatedAt"`
}

// MongoAccountStore implements [AccountStore] on a MongoDB collection.
type MongoAccountStore struct {
	collection *mongo.Collection
}

// NewMongoAccountStore binds the store to the accounts collection of database.
func NewMongoAccountStore(database *mongo.Database) *MongoAccountStore {
	return &MongoAccountStore{collection: database.Collection(constants.MongoAccountCollection)}
}

/*
EnsureIndexes creates the unique indexes the stores rely on.

Description: Index names match the PostgreSQL constraint names so the service
can tell an email collision from a provider identity collision on either
driver. Creating an existing index is a no-op.

Parameters:
  - context: context.Context

Returns:
  - error: Index creation failures
*/
func (store *MongoAccountStore) EnsureIndexes(context context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(schema.UserAccount.EmailKey).SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "snsId", Value: 1}, {Key: "snsType", Value: 1}},
			Options: options.Index().
				SetName(schema.UserAccount.SNSKey).
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "snsId", Value: bson.D{{Key: "$type", Value: "string"}}}}),
		},
		{
			Keys:    bson.D{{Key: "joinedAt", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("account_joined_idx"),
		},
	}

	if _, err := store.collection.Indexes().CreateMany(context, models); err != nil {
		return fmt.Errorf("mongo_account_ensure_indexes_failed: %w", err)
	}
	return nil
}

func (store *MongoAccountStore) FindByID(context context.Context, id string) (*Account, error) {
	return store.findOne(context, bson.D{{Key: "_id", Value: id}}, "mongo_account_find_by_id")
}

func (store *MongoAccountStore) FindByEmail(context context.Context, email string) (*Account, error) {
	return store.findOne(context, bson.D{{Key: "email", Value: email}}, "mongo_account_find_by_email")
}

func (store *MongoAccountStore) FindBySNSID(context context.Context, snsID string, provider Provider) (*Account, error) {
	filter := bson.D{{Key: "snsId", Value: snsID}, {Key: "snsType", Value: string(provider)}}
	return store.findOne(context, filter, "mongo_account_find_by_sns_id")
}

// Create inserts the account document. Unique index violations surface as
// a [dberr.DuplicateError] named after the index.
func (store *MongoAccountStore) Create(context context.Context, account *Account) error {
	if _, err := store.collection.InsertOne(context, toMongoAccount(account)); err != nil {
		return dberr.Wrap(err, "mongo_account_create")
	}
	return nil
}

/*
Update applies changes with a single $set and returns the document after it.

Parameters:
  - context: context.Context
  - id: string
  - changes: Changes

Returns:
  - *Account: Updated entity
  - error: dberr.ErrNotFound or driver errors
*/
func (store *MongoAccountStore) Update(context context.Context, id string, changes Changes) (*Account, error) {
	update := bson.D{{Key: "$set", Value: mongoSet(changes)}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var document mongoAccount
	err := store.collection.FindOneAndUpdate(context, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&document)
	if err != nil {
		return nil, dberr.Wrap(err, "mongo_account_update")
	}
	return document.toAccount(), nil
}

func (store *MongoAccountStore) Delete(context context.Context, id string) error {
	result, err := store.collection.DeleteOne(context, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return dberr.Wrap(err, "mongo_account_delete")
	}
	if result.DeletedCount == 0 {
		return dberr.Wrap(dberr.ErrNotFound, "mongo_account_delete")
	}
	return nil
}

func (store *MongoAccountStore) ListAll(context context.Context) ([]*Account, error) {
	opts := options.Find().SetSort(bson.D{{Key: "joinedAt", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := store.collection.Find(context, bson.D{}, opts)
	if err != nil {
		return nil, dberr.Wrap(err, "mongo_account_list_all")
	}
	defer cursor.Close(context)

	accounts := make([]*Account, 0)
	for cursor.Next(context) {
		var document mongoAccount
		if err := cursor.Decode(&document); err != nil {
			return nil, dberr.Wrap(err, "mongo_account_list_all_decode")
		}
		accounts = append(accounts, document.toAccount())
	}

	if err := cursor.Err(); err != nil {
		return nil, dberr.Wrap(err, "mongo_account_list_all")
	}
	return accounts, nil
}

func (store *MongoAccountStore) findOne(context context.Context, filter bson.D, action string) (*Account, error) {
	var document mongoAccount
	if err := store.collection.FindOne(context, filter).Decode(&document); err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return document.toAccount(), nil
}

// # Document Mapping

func toMongoAccount(account *Account) mongoAccount {
	snsType := account.SNSType
	if snsType == "" {
		snsType = ProviderNormal
	}

	return mongoAccount{
		ID:                 account.ID,
		Email:              account.Email,
		Credential:         account.Credential,
		Nickname:           account.Nickname,
		ScreenID:           account.ScreenID,
		IsConfirmed:        account.IsConfirmed,
		ConfirmationToken:  account.ConfirmationToken,
		DeactivatedAt:      account.DeactivatedAt,
		DisplayLanguage:    int(account.DisplayLanguage),
		AvailableLanguages: languagesToInts(account.AvailableLanguages),
		Country:            account.Country,
		SNSID:              account.SNSID,
		SNSType:            string(snsType),
		Profile:            account.Profile,
		Banner:             account.Banner,
		Intro:              account.Intro,
		JoinedAt:           account.JoinedAt,
		TermsAcceptedAt:    account.TermsAcceptedAt,
		UpdatedAt:          account.UpdatedAt,
	}
}

func (document mongoAccount) toAccount() *Account {
	languages := make([]Language, len(document.AvailableLanguages))
	for index, value := range document.AvailableLanguages {
		languages[index] = Language(value)
	}

	return &Account{
		ID:                 document.ID,
		Email:              document.Email,
		Credential:         document.Credential,
		Nickname:           document.Nickname,
		ScreenID:           document.ScreenID,
		IsConfirmed:        document.IsConfirmed,
		ConfirmationToken:  document.ConfirmationToken,
		DeactivatedAt:      document.DeactivatedAt,
		DisplayLanguage:    Language(document.DisplayLanguage),
		AvailableLanguages: languages,
		Country:            document.Country,
		SNSID:              document.SNSID,
		SNSType:            Provider(document.SNSType),
		Profile:            document.Profile,
		Banner:             document.Banner,
		Intro:              document.Intro,
		JoinedAt:           document.JoinedAt,
		TermsAcceptedAt:    document.TermsAcceptedAt,
		UpdatedAt:          document.UpdatedAt,
	}
}

// mongoSet renders changes as the $set document of an update.
func mongoSet(changes Changes) bson.D {
	var set bson.D
	put := func(key string, value any) {
		set = append(set, bson.E{Key: key, Value: value})
	}

	patch := changes.AccountPatch
	if patch.Nickname != nil {
		put("nickname", *patch.Nickname)
	}
	if patch.ScreenID != nil {
		put("screenId", *patch.ScreenID)
	}
	if patch.Intro != nil {
		put("intro", *patch.Intro)
	}
	if patch.Profile != nil {
		put("profile", *patch.Profile)
	}
	if patch.Banner != nil {
		put("banner", *patch.Banner)
	}
	if patch.DisplayLanguage != nil {
		put("displayLanguage", int(*patch.DisplayLanguage))
	}
	if patch.AvailableLanguages != nil {
		put("availableLanguages", languagesToInts(*patch.AvailableLanguages))
	}
	if patch.Country != nil {
		put("country", *patch.Country)
	}
	if patch.TermsAcceptedAt != nil {
		put("termsAcceptedAt", *patch.TermsAcceptedAt)
	}

	if changes.Credential != nil {
		put("credential", *changes.Credential)
	}
	if changes.Confirm {
		put("isConfirmed", true)
		put("confirmToken", nil)
	}
	if changes.DeactivatedAt != nil {
		put("deactivatedAt", *changes.DeactivatedAt)
	}

	put("updatedAt", changes.UpdatedAt)
	return set
}

func languagesToInts(languages []Language) []int {
	converted := make([]int, len(languages))
	for index, language := range languages {
		converted[index] = int(language)
	}
	return converted
}
