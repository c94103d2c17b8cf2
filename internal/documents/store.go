package documents

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/pgEdge/pgedge-costdw/internal/logging"
	"github.com/pgEdge/pgedge-costdw/internal/models"
)

// indexedFields are indexed on both collections.
var indexedFields = []string{"pais", "continente"}

// Store keeps the unified documents in a MongoDB database.
type Store struct {
	client   *mongo.Client
	database *mongo.Database
}

// Connect opens and pings a MongoDB client for database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logging.Info().Str("database", database).Msg("Connected to mongodb")

	return &Store{client: client, database: client.Database(database)}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Drop drops both collections.
func (s *Store) Drop(ctx context.Context) error {
	for _, name := range []string{BigMacCollection, CostosCollection} {
		if err := s.database.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("failed to drop collection %s: %w", name, err)
		}
	}
	return nil
}

// LoadResult reports how one collection was replaced.
type LoadResult struct {
	Collection string `json:"collection" yaml:"collection"`
	Deleted    int64  `json:"deleted" yaml:"deleted"`
	Inserted   int    `json:"inserted" yaml:"inserted"`
}

// Load replaces the contents of both collections with p and indexes them.
func (s *Store) Load(ctx context.Context, p *Prepared) ([]LoadResult, error) {
	bigMac, err := s.replace(ctx, BigMacCollection, toAny(p.BigMac))
	if err != nil {
		return nil, err
	}
	costos, err := s.replace(ctx, CostosCollection, toAny(p.Costos))
	if err != nil {
		return nil, err
	}
	return []LoadResult{*bigMac, *costos}, nil
}

func (s *Store) replace(ctx context.Context, name string, docs []any) (*LoadResult, error) {
	coll := s.database.Collection(name)
	result := &LoadResult{Collection: name}

	deleted, err := coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to clear collection %s: %w", name, err)
	}
	result.Deleted = deleted.DeletedCount

	if len(docs) > 0 {
		inserted, err := coll.InsertMany(ctx, docs)
		if err != nil {
			return nil, fmt.Errorf("failed to insert into %s: %w", name, err)
		}
		result.Inserted = len(inserted.InsertedIDs)
	}

	for _, field := range indexedFields {
		model := mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}}
		if _, err := coll.Indexes().CreateOne(ctx, model); err != nil {
			return nil, fmt.Errorf("failed to create index on %s.%s: %w", name, field, err)
		}
	}

	logging.Info().
		Str("collection", name).
		Int64("deleted", result.Deleted).
		Int("inserted", result.Inserted).
		Strs("indexes", indexedFields).
		Msg("Replaced collection")

	return result, nil
}

// ContinentCount is one bucket of the continent distribution.
type ContinentCount struct {
	Continente string `bson:"_id" json:"continente" yaml:"continente"`
	Count      int64  `bson:"count" json:"count" yaml:"count"`
}

// CheckResult holds the check queries run after a load.
type CheckResult struct {
	Counts          map[string]int64   `json:"counts" yaml:"counts"`
	Continents      []ContinentCount   `json:"continents" yaml:"continents"`
	SamplePrices    []models.BigMacDoc `json:"sample_prices" yaml:"sample_prices"`
	CommonCountries int                `json:"common_countries" yaml:"common_countries"`
	CommonExamples  []string           `json:"common_examples" yaml:"common_examples"`
}

// Check counts the documents of both collections, the tourist cost
// documents per continent, samples three big-mac prices and counts the
// countries present in both collections.
func (s *Store) Check(ctx context.Context) (*CheckResult, error) {
	result := &CheckResult{Counts: make(map[string]int64)}

	for _, name := range []string{BigMacCollection, CostosCollection} {
		n, err := s.database.Collection(name).CountDocuments(ctx, bson.D{})
		if err != nil {
			return nil, fmt.Errorf("failed to count documents in %s: %w", name, err)
		}
		result.Counts[name] = n
	}

	pipeline := bson.A{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$continente"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cursor, err := s.database.Collection(CostosCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate continents: %w", err)
	}
	if err := cursor.All(ctx, &result.Continents); err != nil {
		return nil, fmt.Errorf("failed to decode continents: %w", err)
	}

	cursor, err = s.database.Collection(BigMacCollection).Find(ctx, bson.D{}, options.Find().SetLimit(3))
	if err != nil {
		return nil, fmt.Errorf("failed to sample big mac prices: %w", err)
	}
	if err := cursor.All(ctx, &result.SamplePrices); err != nil {
		return nil, fmt.Errorf("failed to decode big mac prices: %w", err)
	}

	bigMac, err := s.countries(ctx, BigMacCollection)
	if err != nil {
		return nil, err
	}
	costos, err := s.countries(ctx, CostosCollection)
	if err != nil {
		return nil, err
	}
	common := make(map[string]bool)
	for p := range bigMac {
		if costos[p] {
			common[p] = true
		}
	}
	result.CommonCountries = len(common)
	result.CommonExamples = firstSorted(common, 5)

	logging.Info().
		Int64(BigMacCollection, result.Counts[BigMacCollection]).
		Int64(CostosCollection, result.Counts[CostosCollection]).
		Int("common_countries", result.CommonCountries).
		Msg("Checked document store")

	return result, nil
}

func (s *Store) countries(ctx context.Context, name string) (map[string]bool, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "pais", Value: 1}, {Key: "_id", Value: 0}})
	cursor, err := s.database.Collection(name).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries in %s: %w", name, err)
	}
	defer cursor.Close(ctx)

	set := make(map[string]bool)
	for cursor.Next(ctx) {
		var doc struct {
			Pais string `bson:"pais"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode country: %w", err)
		}
		set[doc.Pais] = true
	}
	return set, cursor.Err()
}

// BigMac returns every big_mac_index document ordered by country.
func (s *Store) BigMac(ctx context.Context) ([]models.BigMacDoc, error) {
	var docs []models.BigMacDoc
	if err := s.findAll(ctx, BigMacCollection, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Costos returns every costos_turisticos document ordered by country.
func (s *Store) Costos(ctx context.Context) ([]models.CostosDoc, error) {
	var docs []models.CostosDoc
	if err := s.findAll(ctx, CostosCollection, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *Store) findAll(ctx context.Context, name string, dest any) error {
	opts := options.Find().SetSort(bson.D{{Key: "pais", Value: 1}})
	cursor, err := s.database.Collection(name).Find(ctx, bson.D{}, opts)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := cursor.All(ctx, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", name, err)
	}
	logging.Debug().Str("collection", name).Msg("Extracted documents")
	return nil
}

func toAny[T any](docs []T) []any {
	out := make([]any, len(docs))
	for i, d := range docs {
		out[i] = d
	}
	return out
}

// Source supplies unified documents to the integration stage.
type Source interface {
	BigMac(ctx context.Context) ([]models.BigMacDoc, error)
	Costos(ctx context.Context) ([]models.CostosDoc, error)
}

// PreparedSource serves documents prepared from files without a document
// store.
type PreparedSource struct {
	p *Prepared
}

// NewPreparedSource wraps p as a Source.
func NewPreparedSource(p *Prepared) *PreparedSource {
	return &PreparedSource{p: p}
}

// BigMac implements Source.
func (s *PreparedSource) BigMac(ctx context.Context) ([]models.BigMacDoc, error) {
	docs := append([]models.BigMacDoc(nil), s.p.BigMac...)
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Pais < docs[j].Pais })
	return docs, nil
}

// Costos implements Source.
func (s *PreparedSource) Costos(ctx context.Context) ([]models.CostosDoc, error) {
	docs := append([]models.CostosDoc(nil), s.p.Costos...)
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Pais < docs[j].Pais })
	return docs, nil
}

var (
	_ Source = (*Store)(nil)
	_ Source = (*PreparedSource)(nil)
)
