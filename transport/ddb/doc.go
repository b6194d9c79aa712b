// Package ddb implements transport.CommitLog on DynamoDB.
//
// A conditional PutItem gives the compare-and-swap that S3 lacks, so peers
// sharing an S3 spool cannot publish twice for the same operation.
//
// Table schema:
//   - Partition key: operation_id (string)
//   - Sort key: peer (string)
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name simsearch-commits \
//	  --attribute-definitions AttributeName=operation_id,AttributeType=S AttributeName=peer,AttributeType=S \
//	  --key-schema AttributeName=operation_id,KeyType=HASH AttributeName=peer,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
package ddb
