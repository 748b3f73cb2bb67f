package orders

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is an in-memory DynamoDB covering the calls the store issues:
// PutItem/GetItem/DeleteItem with order_id conditions, UpdateItem with a
// status condition, and single-page Scan.
// Items are stored per table: table -> order_id -> item map.
type mockDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue

	// when set, every call fails with this error
	failWith error
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{
		tables: map[string]map[string]map[string]types.AttributeValue{},
	}
}

func (m *mockDynamo) ensureTable(tbl string) {
	if _, ok := m.tables[tbl]; !ok {
		m.tables[tbl] = map[string]map[string]types.AttributeValue{}
	}
}

func (m *mockDynamo) size(tbl string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[tbl])
}

func itemPK(item map[string]types.AttributeValue) (string, error) {
	v, ok := item["order_id"]
	if !ok {
		return "", errors.New("no order_id in item")
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("order_id is not a string")
	}
	return s.Value, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}

	table := *params.TableName
	m.ensureTable(table)
	pk, err := itemPK(params.Item)
	if err != nil {
		return nil, err
	}

	if params.ConditionExpression != nil {
		_, exists := m.tables[table][pk]
		switch *params.ConditionExpression {
		case "attribute_not_exists(order_id)":
			if exists {
				return nil, &types.ConditionalCheckFailedException{}
			}
		case "attribute_exists(order_id)":
			if !exists {
				return nil, &types.ConditionalCheckFailedException{}
			}
		}
	}

	m.tables[table][pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}

	table := *params.TableName
	m.ensureTable(table)
	pk, err := itemPK(params.Key)
	if err != nil {
		return nil, err
	}

	item, ok := m.tables[table][pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) DeleteItem(ctx context.Context, params *dyn.DeleteItemInput, optFns ...func(*dyn.Options)) (*dyn.DeleteItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}

	table := *params.TableName
	m.ensureTable(table)
	pk, err := itemPK(params.Key)
	if err != nil {
		return nil, err
	}

	_, exists := m.tables[table][pk]
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_exists(order_id)" && !exists {
		return nil, &types.ConditionalCheckFailedException{}
	}

	delete(m.tables[table], pk)
	return &dyn.DeleteItemOutput{}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}

	table := *params.TableName
	m.ensureTable(table)
	pk, err := itemPK(params.Key)
	if err != nil {
		return nil, err
	}

	item, exists := m.tables[table][pk]
	// a condition on a missing item fails like DynamoDB does
	if params.ConditionExpression != nil && *params.ConditionExpression == "#s = :expected" {
		if !exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
		curr, ok := item["status"].(*types.AttributeValueMemberS)
		if !ok {
			return nil, &types.ConditionalCheckFailedException{}
		}
		expected := params.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberS).Value
		if curr.Value != expected {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	if !exists {
		return nil, errors.New("item not found")
	}

	if v, ok := params.ExpressionAttributeValues[":next"]; ok {
		item["status"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":ua"]; ok {
		item["updated_at"] = v
	}
	m.tables[table][pk] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) Scan(ctx context.Context, params *dyn.ScanInput, optFns ...func(*dyn.Options)) (*dyn.ScanOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}

	table := *params.TableName
	m.ensureTable(table)

	items := make([]map[string]types.AttributeValue, 0, len(m.tables[table]))
	for _, item := range m.tables[table] {
		items = append(items, item)
	}
	return &dyn.ScanOutput{
		Items: items,
		Count: int32(len(items)),
	}, nil
}
