package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/thalcare/internal/models"
)

const (
	usersCollection    = "users"
	profilesCollection = "profiles"
)

// Mongo stores users and profiles in two collections sharing the same _id.
type Mongo struct {
	users    *mongo.Collection
	profiles *mongo.Collection
}

// Connect opens a client and pings it.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	return client, nil
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		users:    db.Collection(usersCollection),
		profiles: db.Collection(profilesCollection),
	}
}

// EnsureIndexes creates the unique email index and the lookup indexes the
// dashboard queries use.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	_, err = m.profiles.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_type", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "user_type", Value: 1}, {Key: "specific.last_donation_date", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("profiles index: %w", err)
	}
	return nil
}

func (m *Mongo) CreateAccount(ctx context.Context, user models.User, profile models.Profile) error {
	if _, err := m.users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	if _, err := m.profiles.InsertOne(ctx, profile); err != nil {
		// Leave no credentials behind without a profile.
		_, _ = m.users.DeleteOne(ctx, bson.M{"_id": user.ID})
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (m *Mongo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := m.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (m *Mongo) Profile(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := m.profiles.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (m *Mongo) ListProfiles(ctx context.Context, q Query) ([]models.Profile, error) {
	filter := criteriaFilter(q.Criteria)
	if q.Role != "" {
		filter["user_type"] = q.Role
	}
	limit, offset := q.Page()
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := m.profiles.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("find profiles: %w", err)
	}
	defer cursor.Close(ctx)

	profiles := make([]models.Profile, 0)
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return profiles, nil
}

func (m *Mongo) CountByRole(ctx context.Context, c models.Criteria) (models.Stats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: criteriaFilter(c)}},
		{{Key: "$group", Value: bson.M{"_id": "$user_type", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := m.profiles.Aggregate(ctx, pipeline)
	if err != nil {
		return models.Stats{}, fmt.Errorf("count profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Role  models.Role `bson:"_id"`
		Count int64       `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return models.Stats{}, fmt.Errorf("decode counts: %w", err)
	}
	var s models.Stats
	for _, r := range rows {
		s.Set(r.Role, r.Count)
	}
	return s, nil
}

func (m *Mongo) UpdateContact(ctx context.Context, id string, u ContactUpdate) (*models.Profile, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if u.Phone != nil {
		set["phone"] = *u.Phone
	}
	if u.Address != nil {
		set["address"] = *u.Address
	}
	if u.City != nil {
		set["city"] = *u.City
	}
	if u.State != nil {
		set["state"] = *u.State
	}
	filter := bson.M{"_id": id}
	if u.Available != nil {
		// Only donors and doctors carry availability.
		set["available"] = *u.Available
		set["specific.available"] = *u.Available
		filter["available"] = bson.M{"$exists": true}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Profile
	err := m.profiles.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &p, nil
}

func (m *Mongo) ReleaseDonors(ctx context.Context, cutoff string) (int64, error) {
	res, err := m.profiles.UpdateMany(ctx,
		bson.M{
			"user_type":                   models.RoleDonor,
			"available":                   false,
			"specific.last_donation_date": bson.M{"$lte": cutoff, "$ne": ""},
		},
		bson.M{"$set": bson.M{
			"available":          true,
			"specific.available": true,
			"updated_at":         time.Now().UTC(),
		}},
	)
	if err != nil {
		return 0, fmt.Errorf("release donors: %w", err)
	}
	return res.ModifiedCount, nil
}

// criteriaFilter renders criteria with the same semantics as
// profilefilter.Match: substring for location, exact for the rest.
func criteriaFilter(c models.Criteria) bson.M {
	filter := bson.M{}
	if c.City != "" {
		filter["city"] = containsFold(c.City)
	}
	if c.State != "" {
		filter["state"] = containsFold(c.State)
	}
	if c.BloodType != "" {
		filter["blood_type"] = c.BloodType
	}
	if c.SeverityLevel != "" {
		filter["severity_level"] = bson.M{"$regex": "^" + regexp.QuoteMeta(c.SeverityLevel) + "$", "$options": "i"}
	}
	if c.ThalassemiaSpecialist != nil {
		filter["thalassemia_specialist"] = *c.ThalassemiaSpecialist
	}
	if c.Available != nil {
		filter["available"] = *c.Available
	}
	if c.MinRating != nil {
		filter["rating"] = bson.M{"$gte": *c.MinRating}
	}
	return filter
}

func containsFold(s string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(s), "$options": "i"}
}
