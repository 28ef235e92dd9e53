package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/fairtask-ledger/pkg/models"
	"github.com/chris/fairtask-ledger/pkg/storage"
)

// Well-known items of the config table.
const (
	settingsID  = "settings"
	emergencyID = "emergency"
	awardPrefix = "award#"
)

func configKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func (s *Store) getConfigItem(ctx context.Context, id string) (map[string]types.AttributeValue, error) {
	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.Tables.Config),
		Key:            configKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from DynamoDB: %w", id, err)
	}
	return result.Item, nil
}

// GetSettings returns the stored settings, or the defaults when none were
// ever saved.
func (s *Store) GetSettings(ctx context.Context) (models.Settings, error) {
	item, err := s.getConfigItem(ctx, settingsID)
	if err != nil {
		return models.Settings{}, err
	}
	if item == nil {
		return models.DefaultSettings(), nil
	}

	var rec struct {
		Doc string `dynamodbav:"doc"`
	}
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return models.Settings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	var settings models.Settings
	if err := json.Unmarshal([]byte(rec.Doc), &settings); err != nil {
		return models.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

// PutSettings overwrites the settings item.
func (s *Store) PutSettings(ctx context.Context, settings models.Settings) error {
	doc, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.Tables.Config),
		Item: map[string]types.AttributeValue{
			"id":  &types.AttributeValueMemberS{Value: settingsID},
			"doc": &types.AttributeValueMemberS{Value: string(doc)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put settings: %w", err)
	}
	return nil
}

// GetEmergencyState returns the switches. A missing item means all are off.
func (s *Store) GetEmergencyState(ctx context.Context) (models.EmergencyState, error) {
	item, err := s.getConfigItem(ctx, emergencyID)
	if err != nil {
		return models.EmergencyState{}, err
	}
	var state models.EmergencyState
	if item == nil {
		return state, nil
	}
	if err := attributevalue.UnmarshalMap(item, &state); err != nil {
		return models.EmergencyState{}, fmt.Errorf("failed to unmarshal emergency state: %w", err)
	}
	return state, nil
}

// SetEmergencyFlag updates a single switch in place and returns the state
// after the update.
func (s *Store) SetEmergencyFlag(ctx context.Context, flag models.EmergencyFlag, value bool) (models.EmergencyState, error) {
	result, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(s.Tables.Config),
		Key:              configKey(emergencyID),
		UpdateExpression: aws.String("SET #flag = :value"),
		ExpressionAttributeNames: map[string]string{
			"#flag": string(flag),
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":value": &types.AttributeValueMemberBOOL{Value: value},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		return models.EmergencyState{}, fmt.Errorf("failed to update emergency flag %s: %w", flag, err)
	}

	var state models.EmergencyState
	if err := attributevalue.UnmarshalMap(result.Attributes, &state); err != nil {
		return models.EmergencyState{}, fmt.Errorf("failed to unmarshal emergency state: %w", err)
	}
	return state, nil
}

// ClaimAward reserves the award period with a conditional put. When the
// period is taken the stored claim is read back so the caller can resume it.
func (s *Store) ClaimAward(ctx context.Context, claim *models.AwardClaim) (*models.AwardClaim, bool, error) {
	doc, err := json.Marshal(claim)
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode award claim: %w", err)
	}
	id := awardPrefix + claim.Period

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.Tables.Config),
		Item: map[string]types.AttributeValue{
			"id":  &types.AttributeValueMemberS{Value: id},
			"doc": &types.AttributeValueMemberS{Value: string(doc)},
		},
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err == nil {
		return claim, true, nil
	}
	if !isConditionFailed(err) {
		return nil, false, fmt.Errorf("failed to put award claim: %w", err)
	}

	item, err := s.getConfigItem(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if item == nil {
		return nil, false, fmt.Errorf("award claim %s: %w", claim.Period, storage.ErrConflict)
	}
	var rec struct {
		Doc string `dynamodbav:"doc"`
	}
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal award claim: %w", err)
	}
	var stored models.AwardClaim
	if err := json.Unmarshal([]byte(rec.Doc), &stored); err != nil {
		return nil, false, fmt.Errorf("failed to decode award claim: %w", err)
	}
	return &stored, false, nil
}
