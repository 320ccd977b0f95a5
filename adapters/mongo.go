package adapters

import (
	"context"
	"errors"
	"fmt"
	"maps"
	nurl "net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kndndrj/nvim-dbedit/dbedit/core"
)

// Register client
func init() {
	_ = register(&Mongo{}, "mongo", "mongodb")
}

var (
	_ core.Adapter  = (*Mongo)(nil)
	_ core.Endpoint = (*mongoEndpoint)(nil)
)

var errMissingDatabase = errors.New("mongo: no database in connection url")

const mongoIDField = "_id"

type Mongo struct{}

func (m *Mongo) Connect(params *core.EndpointParams) (core.Endpoint, error) {
	if params.Table == "" {
		return nil, ErrMissingTable
	}

	// get database name from url
	u, err := nurl.Parse(params.URL)
	if err != nil {
		return nil, fmt.Errorf("mongo: invalid url: %w", err)
	}
	dbName := strings.Trim(u.Path, "/")
	if dbName == "" {
		return nil, errMissingDatabase
	}

	client, err := mongo.Connect(context.TODO(), options.Client().ApplyURI(params.URL))
	if err != nil {
		return nil, err
	}

	return &mongoEndpoint{
		client:     client,
		collection: client.Database(dbName).Collection(params.Table),
		newID:      func() string { return uuid.New().String() },
	}, nil
}

// mongoEndpoint serves a single collection. Documents are ordered by _id.
type mongoEndpoint struct {
	client     *mongo.Client
	collection *mongo.Collection
	newID      func() string
}

// mongoSearchFilter matches documents where any top level field, converted to
// a string, contains query. Case is ignored and query is matched literally.
func mongoSearchFilter(query string) bson.M {
	if query == "" {
		return bson.M{}
	}

	return bson.M{
		"$expr": bson.M{
			"$anyElementTrue": bson.A{
				bson.M{
					"$map": bson.M{
						"input": bson.M{"$objectToArray": "$$ROOT"},
						"as":    "field",
						"in": bson.M{
							"$regexMatch": bson.M{
								"input": bson.M{
									"$convert": bson.M{
										"input":   "$$field.v",
										"to":      "string",
										"onError": "",
										"onNull":  "",
									},
								},
								"regex":   regexp.QuoteMeta(query),
								"options": "i",
							},
						},
					},
				},
			},
		},
	}
}

// mongoIDFilter matches the record id both as a string and, when it looks
// like one, as an ObjectID.
func mongoIDFilter(id core.RecordID) bson.M {
	oid, err := primitive.ObjectIDFromHex(string(id))
	if err != nil {
		return bson.M{mongoIDField: string(id)}
	}
	return bson.M{mongoIDField: bson.M{"$in": bson.A{oid, string(id)}}}
}

// normalizeBSON converts decoded bson values to the plain types records hold.
func normalizeBSON(value any) any {
	switch v := value.(type) {
	case primitive.A:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeBSON(item)
		}
		return out
	case primitive.M:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeBSON(item)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(v))
		for _, e := range v {
			out[e.Key] = normalizeBSON(e.Value)
		}
		return out
	case primitive.ObjectID:
		return v.Hex()
	case primitive.DateTime:
		return v.Time().UTC()
	case primitive.Decimal128:
		return v.String()
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return v
	}
}

func mongoRecord(doc bson.M) *core.Record {
	record := core.NewRecord(core.RecordID(core.ToText(normalizeBSON(doc[mongoIDField]))), nil)
	for field, value := range doc {
		if field == mongoIDField {
			continue
		}
		record.Fields[field] = normalizeBSON(value)
	}
	return record
}

func (e *mongoEndpoint) Fetch(ctx context.Context, req *core.FetchRequest) (*core.FetchResponse, error) {
	filter := mongoSearchFilter(req.Query)

	total, err := e.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	if req.Limit <= 0 {
		return &core.FetchResponse{Total: int(total)}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: mongoIDField, Value: 1}}).
		SetSkip(int64(max(req.Offset, 0))).
		SetLimit(int64(req.Limit))

	cursor, err := e.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	records := make([]*core.Record, 0, len(docs))
	for _, doc := range docs {
		records = append(records, mongoRecord(doc))
	}

	return &core.FetchResponse{Data: records, Total: int(total)}, nil
}

func (e *mongoEndpoint) Create(ctx context.Context, record *core.Record) (core.RecordID, error) {
	id := e.newID()

	doc := bson.M{}
	maps.Copy(doc, record.Fields)
	doc[mongoIDField] = id

	if _, err := e.collection.InsertOne(ctx, doc); err != nil {
		return "", err
	}

	return core.RecordID(id), nil
}

func (e *mongoEndpoint) Update(ctx context.Context, req *core.UpdateRequest) error {
	if req.FieldName == mongoIDField || req.FieldName == "" || strings.HasPrefix(req.FieldName, "$") {
		return fmt.Errorf("%w: %q", core.ErrUnknownField, req.FieldName)
	}

	res, err := e.collection.UpdateOne(ctx, mongoIDFilter(req.ID), bson.M{
		"$set": bson.M{req.FieldName: req.FieldData},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %q", core.ErrRecordNotFound, req.ID)
	}

	return nil
}

func (e *mongoEndpoint) Close() {
	_ = e.client.Disconnect(context.TODO())
}
