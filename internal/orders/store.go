package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/klynn-app/orders-api/internal/awsx"
)

const (
	defaultTimeout      = 5 * time.Second
	defaultRetryInitial = 100 * time.Millisecond
	defaultRetryMax     = 3
)

// ErrStatusMismatch is returned by UpdateStatus when the record was not in
// the expected state.
var ErrStatusMismatch = errors.New("status mismatch/conditional failed")

// Validator checks a full order record against the schema. The store runs it
// before every write so a failed validation never reaches the table.
type Validator interface {
	ValidateOrder(o Order) error
}

// Store encapsulates operations on the orders table.
type Store struct {
	client    awsx.DynamoDBAPI
	tableName string
	validate  Validator
	timeout   time.Duration
	nowFunc   func() time.Time

	retryInitial time.Duration
	retryMax     uint64
}

// NewStore creates a new orders Store. timeout bounds each DynamoDB round
// trip; non-positive values fall back to the default.
func NewStore(client awsx.DynamoDBAPI, tableName string, v Validator, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Store{
		client:       client,
		tableName:    tableName,
		validate:     v,
		timeout:      timeout,
		nowFunc:      time.Now,
		retryInitial: defaultRetryInitial,
		retryMax:     defaultRetryMax,
	}
}

// Create validates the order, assigns an id and timestamps, and persists it.
// The incoming order must not carry an id.
func (s *Store) Create(ctx context.Context, o Order) (*Order, error) {
	if o.Status == "" {
		o.Status = StatusPending
	}
	if o.Items == nil {
		o.Items = []Item{}
	}
	if s.validate != nil {
		if err := s.validate.ValidateOrder(o); err != nil {
			return nil, err
		}
	}

	now := s.nowFunc().UTC()
	o.ID = uuid.NewString()
	o.CreatedAt = now
	o.UpdatedAt = now

	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	}
	if err := s.do(ctx, "put order", func(callCtx context.Context) error {
		_, err := s.client.PutItem(callCtx, input)
		return err
	}); err != nil {
		return nil, err
	}
	return &o, nil
}

// Get fetches an order by id.
func (s *Store) Get(ctx context.Context, id string) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	input := &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       orderKey(id),
	}
	var out *dyn.GetItemOutput
	if err := s.do(ctx, "get order", func(callCtx context.Context) error {
		var err error
		out, err = s.client.GetItem(callCtx, input)
		return err
	}); err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// List returns every order in the table, in storage order.
func (s *Store) List(ctx context.Context) ([]Order, error) {
	out := []Order{}

	paginator := dyn.NewScanPaginator(s.client, &dyn.ScanInput{
		TableName: &s.tableName,
	})
	for paginator.HasMorePages() {
		var page *dyn.ScanOutput
		if err := s.do(ctx, "scan orders", func(callCtx context.Context) error {
			var err error
			page, err = paginator.NextPage(callCtx)
			return err
		}); err != nil {
			return nil, err
		}

		var records []Order
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &records); err != nil {
			return nil, fmt.Errorf("unmarshal orders: %w", err)
		}
		out = append(out, records...)
	}
	return out, nil
}

// Update merges the patch over the stored record, revalidates the result and
// writes it back. A validation failure leaves the record untouched. The write
// is guarded by attribute_exists so a racing delete surfaces as ErrNotFound.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (*Order, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := *existing
	patch.apply(&merged)
	if s.validate != nil {
		if err := s.validate.ValidateOrder(merged); err != nil {
			return nil, err
		}
	}

	item, err := attributevalue.MarshalMap(merged)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	input := &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_exists(order_id)"),
	}
	if err := s.do(ctx, "put order", func(callCtx context.Context) error {
		_, err := s.client.PutItem(callCtx, input)
		return err
	}); err != nil {
		if isConditionalFailure(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &merged, nil
}

// Delete removes the order. Deleting an absent record returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	input := &dyn.DeleteItemInput{
		TableName:           &s.tableName,
		Key:                 orderKey(id),
		ConditionExpression: awsString("attribute_exists(order_id)"),
	}
	if err := s.do(ctx, "delete order", func(callCtx context.Context) error {
		_, err := s.client.DeleteItem(callCtx, input)
		return err
	}); err != nil {
		if isConditionalFailure(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// UpdateStatus conditionally moves the order from expected to next.
// Returns ErrStatusMismatch when the record was not in the expected state.
func (s *Store) UpdateStatus(ctx context.Context, id string, expected, next Status) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	now := s.nowFunc().UTC()
	input := &dyn.UpdateItemInput{
		TableName:                &s.tableName,
		Key:                      orderKey(id),
		UpdateExpression:         awsString("SET #s = :next, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":next":     &types.AttributeValueMemberS{Value: string(next)},
			":expected": &types.AttributeValueMemberS{Value: string(expected)},
			":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339Nano)},
		},
		ConditionExpression: awsString("#s = :expected"),
	}
	if err := s.do(ctx, "update status", func(callCtx context.Context) error {
		_, err := s.client.UpdateItem(callCtx, input)
		return err
	}); err != nil {
		if isConditionalFailure(err) {
			return ErrStatusMismatch
		}
		return err
	}
	return nil
}

// do runs one DynamoDB operation under the per-call timeout, retrying only
// storage-unavailability failures with bounded exponential backoff.
func (s *Store) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.retryInitial
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, s.retryMax), ctx)

	err := backoff.Retry(func() error {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		if err := fn(callCtx); err != nil {
			if retryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}, policy)
	if err == nil {
		return nil
	}
	if retryable(err) {
		return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// retryable reports whether the failure is a connectivity/throttle fault
// worth another attempt. Conditional failures and client errors are terminal.
func retryable(err error) bool {
	var cond *types.ConditionalCheckFailedException
	if errors.As(err, &cond) {
		return false
	}
	var ae smithy.APIError
	if errors.As(err, &ae) {
		switch ae.ErrorCode() {
		case "ProvisionedThroughputExceededException",
			"ThrottlingException",
			"RequestLimitExceeded",
			"InternalServerError",
			"ServiceUnavailable":
			return true
		}
		return false
	}
	// transport faults and timeouts
	return true
}

func isConditionalFailure(err error) bool {
	var cond *types.ConditionalCheckFailedException
	return errors.As(err, &cond)
}

func orderKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"order_id": &types.AttributeValueMemberS{Value: id},
	}
}

func awsString(s string) *string { return &s }
