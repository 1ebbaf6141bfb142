package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/prem22k/c3-backend/applications/recruitment"
	"github.com/prem22k/c3-backend/applications/registration"
	"github.com/prem22k/c3-backend/logger"
)

const (
	RegistrationsCollection = "registrations-2026"
	RecruitmentCollection   = "recruitment"
)

type memberDoc struct {
	ObjectID            primitive.ObjectID `bson:"_id,omitempty"`
	registration.Member `bson:",inline"`
}

func (d *memberDoc) toMember() *registration.Member {
	m := d.Member
	m.ID = d.ObjectID.Hex()
	return &m
}

type candidateDoc struct {
	ObjectID              primitive.ObjectID `bson:"_id,omitempty"`
	recruitment.Candidate `bson:",inline"`
}

func (d *candidateDoc) toCandidate() *recruitment.Candidate {
	c := d.Candidate
	c.ID = d.ObjectID.Hex()
	return &c
}

// MongoStore keeps members and candidates in two collections with a unique
// index on email.
type MongoStore struct {
	client     *mongo.Client
	members    *mongo.Collection
	candidates *mongo.Collection
}

// ConnectMongo dials MongoDB, pings the primary and ensures the indexes.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	logger.Log.Info("[db] Connecting to MongoDB...")

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := NewMongoStore(client, database)
	if err := s.EnsureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.Log.Info(fmt.Sprintf("[db] ✅ Connected to MongoDB database %q", database))
	return s, nil
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	dbh := client.Database(database)
	return &MongoStore{
		client:     client,
		members:    dbh.Collection(RegistrationsCollection),
		candidates: dbh.Collection(RecruitmentCollection),
	}
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	unique := mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := s.members.Indexes().CreateMany(ctx, []mongo.IndexModel{
		unique,
		{Keys: bson.D{{Key: "mobile", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("create registration indexes: %w", err)
	}
	if _, err := s.candidates.Indexes().CreateOne(ctx, unique); err != nil {
		return fmt.Errorf("create recruitment indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) findMember(ctx context.Context, filter bson.D) (*registration.Member, error) {
	var doc memberDoc
	if err := s.members.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, registration.ErrNotFound
		}
		return nil, fmt.Errorf("find registration: %w", err)
	}
	return doc.toMember(), nil
}

func (s *MongoStore) FindMemberByEmail(ctx context.Context, email string) (*registration.Member, error) {
	return s.findMember(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *MongoStore) FindMemberByMobile(ctx context.Context, mobile string) (*registration.Member, error) {
	return s.findMember(ctx, bson.D{{Key: "mobile", Value: mobile}})
}

// upsertByEmail runs FindOneAndUpdate with upsert and retries once when two
// concurrent upserts race on the unique email index.
func upsertByEmail(ctx context.Context, coll *mongo.Collection, email string, update bson.D, out any) error {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	filter := bson.D{{Key: "email", Value: email}}

	err := coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(out)
	if mongo.IsDuplicateKeyError(err) {
		err = coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(out)
	}
	return err
}

func (s *MongoStore) UpsertMember(ctx context.Context, m *registration.Member) (*registration.Member, error) {
	interests := m.Interests
	if interests == nil {
		interests = []string{}
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "name", Value: m.Name},
			{Key: "mobile", Value: m.Mobile},
			{Key: "rollNumber", Value: m.RollNumber},
			{Key: "department", Value: m.Department},
			{Key: "year", Value: m.Year},
			{Key: "interests", Value: interests},
			{Key: "experience", Value: m.Experience},
			{Key: "expectations", Value: m.Expectations},
			{Key: "referral", Value: m.Referral},
			{Key: "updatedAt", Value: m.UpdatedAt},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "registrationID", Value: m.RegistrationID},
			{Key: "emailSent", Value: false},
			{Key: "createdAt", Value: m.CreatedAt},
		}},
	}

	var doc memberDoc
	if err := upsertByEmail(ctx, s.members, m.Email, update, &doc); err != nil {
		return nil, fmt.Errorf("upsert registration: %w", err)
	}
	return doc.toMember(), nil
}

func (s *MongoStore) MarkEmailSent(ctx context.Context, email string, at time.Time) error {
	res, err := s.members.UpdateOne(ctx,
		bson.D{{Key: "email", Value: email}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "emailSent", Value: true},
			{Key: "emailSentAt", Value: at},
			{Key: "updatedAt", Value: at},
		}}},
	)
	if err != nil {
		return fmt.Errorf("mark email sent: %w", err)
	}
	if res.MatchedCount == 0 {
		return registration.ErrNotFound
	}
	return nil
}

func (s *MongoStore) ListMembers(ctx context.Context) ([]*registration.Member, error) {
	cur, err := s.members.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	var docs []memberDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode registrations: %w", err)
	}

	members := make([]*registration.Member, 0, len(docs))
	for i := range docs {
		members = append(members, docs[i].toMember())
	}
	return members, nil
}

func (s *MongoStore) UpsertCandidate(ctx context.Context, c *recruitment.Candidate) (*recruitment.Candidate, error) {
	set := bson.D{
		{Key: "name", Value: c.Name},
		{Key: "mobile", Value: c.Mobile},
		{Key: "passingOutYear", Value: c.PassingOutYear},
		{Key: "source", Value: c.Source},
		{Key: "updatedAt", Value: c.UpdatedAt},
	}
	// A retry without problemUnlocked keeps the stored one.
	if c.ProblemUnlocked != "" {
		set = append(set, bson.E{Key: "problemUnlocked", Value: c.ProblemUnlocked})
	}
	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "submittedSolution", Value: false},
			{Key: "createdAt", Value: c.CreatedAt},
		}},
	}

	var doc candidateDoc
	if err := upsertByEmail(ctx, s.candidates, c.Email, update, &doc); err != nil {
		return nil, fmt.Errorf("upsert candidate: %w", err)
	}
	return doc.toCandidate(), nil
}

func (s *MongoStore) FindCandidateByEmail(ctx context.Context, email string) (*recruitment.Candidate, error) {
	var doc candidateDoc
	if err := s.candidates.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, recruitment.ErrNotFound
		}
		return nil, fmt.Errorf("find candidate: %w", err)
	}
	return doc.toCandidate(), nil
}

func (s *MongoStore) ListCandidates(ctx context.Context) ([]*recruitment.Candidate, error) {
	cur, err := s.candidates.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	var docs []candidateDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}

	candidates := make([]*recruitment.Candidate, 0, len(docs))
	for i := range docs {
		candidates = append(candidates, docs[i].toCandidate())
	}
	return candidates, nil
}
