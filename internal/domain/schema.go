package domain

import "fmt"

const (
	TableTypeExternal = "EXTERNAL_TABLE"

	TextInputFormat      = "org.apache.hadoop.mapred.TextInputFormat"
	HiveTextOutputFormat = "org.apache.hadoop.hive.ql.io.HiveIgnoreKeyTextOutputFormat"
	JSONSerDe            = "org.openx.data.jsonserde.JsonSerDe"
)

// Column is a single catalog column.
type Column struct {
	Name string
	Type string
}

// TableSchema describes an external catalog table over objects in storage.
type TableSchema struct {
	Name         string
	Columns      []Column
	Location     string
	InputFormat  string
	OutputFormat string
	SerdeLibrary string
	TableType    string
}

// PlayerColumns is the fixed column list matching Player.
var PlayerColumns = []Column{
	{Name: "PlayerID", Type: "int"},
	{Name: "FirstName", Type: "string"},
	{Name: "LastName", Type: "string"},
	{Name: "Team", Type: "string"},
	{Name: "Position", Type: "string"},
	{Name: "Experience", Type: "int"},
	{Name: "Height", Type: "int"},
	{Name: "Weight", Type: "int"},
	{Name: "Salary", Type: "int"},
}

// PlayerTableSchema declares the JSON lines player table at location.
func PlayerTableSchema(name, location string) TableSchema {
	cols := make([]Column, len(PlayerColumns))
	copy(cols, PlayerColumns)
	return TableSchema{
		Name:         name,
		Columns:      cols,
		Location:     location,
		InputFormat:  TextInputFormat,
		OutputFormat: HiveTextOutputFormat,
		SerdeLibrary: JSONSerDe,
		TableType:    TableTypeExternal,
	}
}

// S3Location builds an s3:// URI for a prefix inside bucket.
func S3Location(bucket, prefix string) string {
	return fmt.Sprintf("s3://%s/%s", bucket, prefix)
}
