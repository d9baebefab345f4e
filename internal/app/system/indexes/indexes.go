// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent. Errors
are aggregated so every problem is visible and startup can fail fast.

The unique indexes back the conflict errors surfaced by the stores:
organization name, person email per organization, and team/license name per
organization (on the case-folded field).
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var problems []string

	if err := ensureOrganizations(ctx, db); err != nil {
		problems = append(problems, "organizations: "+err.Error())
	}
	if err := ensurePeople(ctx, db); err != nil {
		problems = append(problems, "people: "+err.Error())
	}
	if err := ensureTeams(ctx, db); err != nil {
		problems = append(problems, "teams: "+err.Error())
	}
	if err := ensureLicenses(ctx, db); err != nil {
		problems = append(problems, "licenses: "+err.Error())
	}
	if err := ensureSeats(ctx, db); err != nil {
		problems = append(problems, "seats: "+err.Error())
	}
	if err := ensureAssets(ctx, db); err != nil {
		problems = append(problems, "assets: "+err.Error())
	}
	if err := ensureDocuments(ctx, db); err != nil {
		problems = append(problems, "documents: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureOrganizations(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("organizations").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_name_ci"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetName("created_at"),
		},
	})
	return err
}

func ensurePeople(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("people").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_org_email"),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("org_created_at"),
		},
		{
			Keys:    bson.D{{Key: "team_id", Value: 1}},
			Options: options.Index().SetName("team_id"),
		},
	})
	return err
}

func ensureTeams(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("teams").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_org_name_ci"),
		},
	})
	return err
}

func ensureLicenses(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("licenses").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_org_name_ci"),
		},
	})
	return err
}

func ensureSeats(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("seats").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "license_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("license_created_at"),
		},
		{
			Keys:    bson.D{{Key: "person_id", Value: 1}},
			Options: options.Index().SetName("person_id"),
		},
	})
	return err
}

func ensureAssets(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("assets").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("org_created_at"),
		},
		{
			Keys:    bson.D{{Key: "person_id", Value: 1}},
			Options: options.Index().SetName("person_id"),
		},
	})
	return err
}

func ensureDocuments(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("documents").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "uploaded_at", Value: -1}},
			Options: options.Index().SetName("org_uploaded_at"),
		},
		{
			Keys:    bson.D{{Key: "person_id", Value: 1}},
			Options: options.Index().SetName("person_id"),
		},
	})
	return err
}
