package vectorstore

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantStore implements VectorStore using Qdrant.
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore creates a new Qdrant vector store client.
// url should be in format "host:port" (e.g., "localhost:6334").
func NewQdrantStore(ctx context.Context, url string) (*QdrantStore, error) {
	host, portStr, err := net.SplitHostPort(url)
	if err != nil {
		// If no port specified, assume default.
		host = url
		portStr = "6334"
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid port in qdrant url: %w", err)
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &QdrantStore{client: client}, nil
}

// Close closes the Qdrant client connection.
func (s *QdrantStore) Close() error {
	return s.client.Close()
}

// EnsureCollection creates the named collection if it does not already exist.
func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// Upsert inserts or updates points in the named collection.
func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	qpoints := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		payload := map[string]*qdrant.Value{
			"content": qdrant.NewValueString(p.Content),
		}
		for k, v := range p.Meta {
			payload[k] = anyToValue(v)
		}

		qpoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: payload,
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Points:         qpoints,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert points: %w", err)
	}
	return nil
}

// Search performs similarity search, optionally constrained by filter.
func (s *QdrantStore) Search(ctx context.Context, collection string, vector []float32, topK int, filter *Filter) ([]SearchResult, error) {
	query := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if filter != nil {
		query.Filter = toQdrantFilter(*filter)
	}

	response, err := s.client.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0, len(response))
	for _, point := range response {
		result := SearchResult{
			ID:       point.Id.GetUuid(),
			Score:    point.Score,
			Metadata: make(map[string]any),
		}
		if payload := point.Payload; payload != nil {
			if content, ok := payload["content"]; ok {
				result.Content = content.GetStringValue()
			}
			for k, v := range payload {
				if k != "content" {
					result.Metadata[k] = valueToAny(v)
				}
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// toQdrantFilter translates the spec's `{field, in, value}` / `{AND, conditions}`
// filter tree into a Qdrant filter.
func toQdrantFilter(f Filter) *qdrant.Filter {
	switch f.Operator {
	case OpIn:
		return &qdrant.Filter{
			Must: []*qdrant.Condition{matchAny(f.Field, f.Value)},
		}
	case OpAND:
		must := make([]*qdrant.Condition, 0, len(f.Conditions))
		for _, c := range f.Conditions {
			must = append(must, leafCondition(c))
		}
		return &qdrant.Filter{Must: must}
	default:
		return nil
	}
}

func leafCondition(f Filter) *qdrant.Condition {
	return matchAny(f.Field, f.Value)
}

func matchAny(field string, values []string) *qdrant.Condition {
	return qdrant.NewMatchKeywords(field, values...)
}

func anyToValue(v any) *qdrant.Value {
	switch t := v.(type) {
	case string:
		return qdrant.NewValueString(t)
	case int:
		return qdrant.NewValueInt(int64(t))
	case int64:
		return qdrant.NewValueInt(t)
	case bool:
		return qdrant.NewValueBool(t)
	case float32:
		return qdrant.NewValueDouble(float64(t))
	case float64:
		return qdrant.NewValueDouble(t)
	default:
		return qdrant.NewValueString(fmt.Sprintf("%v", t))
	}
}

func valueToAny(v *qdrant.Value) any {
	switch v.Kind.(type) {
	case *qdrant.Value_IntegerValue:
		return v.GetIntegerValue()
	case *qdrant.Value_BoolValue:
		return v.GetBoolValue()
	case *qdrant.Value_DoubleValue:
		return v.GetDoubleValue()
	default:
		return v.GetStringValue()
	}
}

var _ VectorStore = (*QdrantStore)(nil)
