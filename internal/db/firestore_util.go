package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// classify maps Firestore NotFound errors onto ErrNotFound.
func classify(err error, what string) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s not found: %w", what, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// countQuery runs a server-side COUNT aggregation over q.
func countQuery(ctx context.Context, q firestore.Query) (int64, error) {
	results, err := q.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("count aggregation failed: %w", err)
	}
	count, ok := results["all"]
	if !ok {
		return 0, errors.New("count aggregation result missing")
	}
	value, ok := count.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected count aggregation type %T", count)
	}
	return value.GetIntegerValue(), nil
}
