package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	gluetypes "github.com/aws/aws-sdk-go-v2/service/glue/types"

	"github.com/Harsh-BH/datalake/internal/domain"
	"github.com/Harsh-BH/datalake/internal/repository"
)

type glueAPI interface {
	CreateDatabase(ctx context.Context, in *glue.CreateDatabaseInput, opts ...func(*glue.Options)) (*glue.CreateDatabaseOutput, error)
	CreateTable(ctx context.Context, in *glue.CreateTableInput, opts ...func(*glue.Options)) (*glue.CreateTableOutput, error)
	GetTables(ctx context.Context, in *glue.GetTablesInput, opts ...func(*glue.Options)) (*glue.GetTablesOutput, error)
	DeleteTable(ctx context.Context, in *glue.DeleteTableInput, opts ...func(*glue.Options)) (*glue.DeleteTableOutput, error)
	DeleteDatabase(ctx context.Context, in *glue.DeleteDatabaseInput, opts ...func(*glue.Options)) (*glue.DeleteDatabaseOutput, error)
}

// Catalog implements repository.Catalog on the Glue Data Catalog.
type Catalog struct {
	client glueAPI
}

var _ repository.Catalog = (*Catalog)(nil)

// NewCatalog creates a Glue-backed catalog.
func NewCatalog(cfg aws.Config) *Catalog {
	return &Catalog{client: glue.NewFromConfig(cfg)}
}

func (c *Catalog) CreateDatabase(ctx context.Context, name, description string) error {
	_, err := c.client.CreateDatabase(ctx, &glue.CreateDatabaseInput{
		DatabaseInput: &gluetypes.DatabaseInput{
			Name:        aws.String(name),
			Description: aws.String(description),
		},
	})
	return classify("create database "+name, err)
}

func (c *Catalog) CreateTable(ctx context.Context, database string, schema domain.TableSchema) error {
	_, err := c.client.CreateTable(ctx, &glue.CreateTableInput{
		DatabaseName: aws.String(database),
		TableInput:   tableInput(schema),
	})
	return classify("create table "+database+"."+schema.Name, err)
}

// ListTables reads a single page of table names.
func (c *Catalog) ListTables(ctx context.Context, database string) ([]string, error) {
	out, err := c.client.GetTables(ctx, &glue.GetTablesInput{DatabaseName: aws.String(database)})
	if err != nil {
		return nil, classify("list tables "+database, err)
	}

	names := make([]string, 0, len(out.TableList))
	for _, t := range out.TableList {
		names = append(names, aws.ToString(t.Name))
	}
	return names, nil
}

func (c *Catalog) DeleteTable(ctx context.Context, database, table string) error {
	_, err := c.client.DeleteTable(ctx, &glue.DeleteTableInput{
		DatabaseName: aws.String(database),
		Name:         aws.String(table),
	})
	return classify("delete table "+database+"."+table, err)
}

func (c *Catalog) DeleteDatabase(ctx context.Context, name string) error {
	_, err := c.client.DeleteDatabase(ctx, &glue.DeleteDatabaseInput{Name: aws.String(name)})
	return classify("delete database "+name, err)
}

func tableInput(schema domain.TableSchema) *gluetypes.TableInput {
	columns := make([]gluetypes.Column, len(schema.Columns))
	for i, col := range schema.Columns {
		columns[i] = gluetypes.Column{Name: aws.String(col.Name), Type: aws.String(col.Type)}
	}

	return &gluetypes.TableInput{
		Name:      aws.String(schema.Name),
		TableType: aws.String(schema.TableType),
		StorageDescriptor: &gluetypes.StorageDescriptor{
			Columns:      columns,
			Location:     aws.String(schema.Location),
			InputFormat:  aws.String(schema.InputFormat),
			OutputFormat: aws.String(schema.OutputFormat),
			SerdeInfo: &gluetypes.SerDeInfo{
				SerializationLibrary: aws.String(schema.SerdeLibrary),
			},
		},
	}
}
