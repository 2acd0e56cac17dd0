package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

func apiError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code + " from service"}
}

type fakeS3 struct {
	createIn *s3.CreateBucketInput
	putIn    *s3.PutObjectInput
	listIn   *s3.ListObjectsV2Input
	listOut  *s3.ListObjectsV2Output
	deleted  []string
	err      error
}

func (f *fakeS3) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.createIn = in
	return &s3.CreateBucketOutput{}, f.err
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.err
}

func (f *fakeS3) DeleteBucket(ctx context.Context, in *s3.DeleteBucketInput, _ ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
	return &s3.DeleteBucketOutput{}, f.err
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putIn = in
	return &s3.PutObjectOutput{}, f.err
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.listIn = in
	if f.err != nil {
		return nil, f.err
	}
	return f.listOut, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, *in.Key)
	return &s3.DeleteObjectOutput{}, f.err
}

type fakeGlue struct {
	databaseIn *glue.CreateDatabaseInput
	tableIn    *glue.CreateTableInput
	tablesOut  *glue.GetTablesOutput
	deleted    []string
	err        error
}

func (f *fakeGlue) CreateDatabase(ctx context.Context, in *glue.CreateDatabaseInput, _ ...func(*glue.Options)) (*glue.CreateDatabaseOutput, error) {
	f.databaseIn = in
	return &glue.CreateDatabaseOutput{}, f.err
}

func (f *fakeGlue) CreateTable(ctx context.Context, in *glue.CreateTableInput, _ ...func(*glue.Options)) (*glue.CreateTableOutput, error) {
	f.tableIn = in
	return &glue.CreateTableOutput{}, f.err
}

func (f *fakeGlue) GetTables(ctx context.Context, in *glue.GetTablesInput, _ ...func(*glue.Options)) (*glue.GetTablesOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tablesOut, nil
}

func (f *fakeGlue) DeleteTable(ctx context.Context, in *glue.DeleteTableInput, _ ...func(*glue.Options)) (*glue.DeleteTableOutput, error) {
	f.deleted = append(f.deleted, *in.DatabaseName+"."+*in.Name)
	return &glue.DeleteTableOutput{}, f.err
}

func (f *fakeGlue) DeleteDatabase(ctx context.Context, in *glue.DeleteDatabaseInput, _ ...func(*glue.Options)) (*glue.DeleteDatabaseOutput, error) {
	f.deleted = append(f.deleted, *in.Name)
	return &glue.DeleteDatabaseOutput{}, f.err
}

type fakeAthena struct {
	startIn    *athena.StartQueryExecutionInput
	startOut   *athena.StartQueryExecutionOutput
	execOut    *athena.GetQueryExecutionOutput
	resultsOut *athena.GetQueryResultsOutput
	err        error
}

func (f *fakeAthena) StartQueryExecution(ctx context.Context, in *athena.StartQueryExecutionInput, _ ...func(*athena.Options)) (*athena.StartQueryExecutionOutput, error) {
	f.startIn = in
	if f.err != nil {
		return nil, f.err
	}
	return f.startOut, nil
}

func (f *fakeAthena) GetQueryExecution(ctx context.Context, in *athena.GetQueryExecutionInput, _ ...func(*athena.Options)) (*athena.GetQueryExecutionOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.execOut, nil
}

func (f *fakeAthena) GetQueryResults(ctx context.Context, in *athena.GetQueryResultsInput, _ ...func(*athena.Options)) (*athena.GetQueryResultsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.resultsOut, nil
}
