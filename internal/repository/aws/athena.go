package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	athenatypes "github.com/aws/aws-sdk-go-v2/service/athena/types"

	"github.com/Harsh-BH/datalake/internal/domain"
	"github.com/Harsh-BH/datalake/internal/repository"
)

type athenaAPI interface {
	StartQueryExecution(ctx context.Context, in *athena.StartQueryExecutionInput, opts ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error)
	GetQueryExecution(ctx context.Context, in *athena.GetQueryExecutionInput, opts ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error)
	GetQueryResults(ctx context.Context, in *athena.GetQueryResultsInput, opts ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error)
}

// QueryEngine implements repository.QueryEngine on Athena.
type QueryEngine struct {
	client athenaAPI
}

var _ repository.QueryEngine = (*QueryEngine)(nil)

// NewQueryEngine creates an Athena-backed query engine.
func NewQueryEngine(cfg aws.Config) *QueryEngine {
	return &QueryEngine{client: athena.NewFromConfig(cfg)}
}

func (q *QueryEngine) StartQuery(ctx context.Context, req *domain.QueryRequest) (string, error) {
	in := &athena.StartQueryExecutionInput{
		QueryString: aws.String(req.Query),
		QueryExecutionContext: &athenatypes.QueryExecutionContext{
			Database: aws.String(req.Database),
		},
		ResultConfiguration: &athenatypes.ResultConfiguration{
			OutputLocation: aws.String(req.OutputLocation),
		},
	}
	if req.ClientToken != "" {
		in.ClientRequestToken = aws.String(req.ClientToken)
	}

	out, err := q.client.StartQueryExecution(ctx, in)
	if err != nil {
		return "", classify("start query", err)
	}
	return aws.ToString(out.QueryExecutionId), nil
}

func (q *QueryEngine) GetQueryStatus(ctx context.Context, executionID string) (domain.QueryStatus, error) {
	out, err := q.client.GetQueryExecution(ctx, &athena.GetQueryExecutionInput{
		QueryExecutionId: aws.String(executionID),
	})
	if err != nil {
		return domain.QueryStatus{}, classify("get query execution "+executionID, err)
	}
	if out.QueryExecution == nil || out.QueryExecution.Status == nil {
		return domain.QueryStatus{}, fmt.Errorf("aws: get query execution %s: no status returned", executionID)
	}

	status := out.QueryExecution.Status
	return domain.QueryStatus{
		State:  mapQueryState(status.State),
		Reason: aws.ToString(status.StateChangeReason),
	}, nil
}

// GetQueryResults returns the first page of rows. Athena includes the column
// header as the first row.
func (q *QueryEngine) GetQueryResults(ctx context.Context, executionID string) ([][]*string, error) {
	out, err := q.client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
		QueryExecutionId: aws.String(executionID),
	})
	if err != nil {
		return nil, classify("get query results "+executionID, err)
	}
	if out.ResultSet == nil {
		return nil, nil
	}

	rows := make([][]*string, 0, len(out.ResultSet.Rows))
	for _, row := range out.ResultSet.Rows {
		cells := make([]*string, len(row.Data))
		for i, datum := range row.Data {
			cells[i] = datum.VarCharValue
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func mapQueryState(state athenatypes.QueryExecutionState) domain.QueryState {
	switch state {
	case athenatypes.QueryExecutionStateQueued:
		return domain.StateSubmitted
	case athenatypes.QueryExecutionStateRunning:
		return domain.StateRunning
	case athenatypes.QueryExecutionStateSucceeded:
		return domain.StateSucceeded
	case athenatypes.QueryExecutionStateFailed:
		return domain.StateFailed
	case athenatypes.QueryExecutionStateCancelled:
		return domain.StateCancelled
	default:
		return domain.QueryState(state)
	}
}
