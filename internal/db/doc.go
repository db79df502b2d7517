// Package db opens PostgreSQL connection pools for the schema store.
//
// Four authentication methods are supported: a plain connection string,
// AWS RDS IAM tokens, Azure Entra ID tokens and Google Cloud SQL IAM
// through the Cloud SQL connector. Token methods fetch a fresh token as the
// password for every new physical connection, so long-lived pools keep
// working after the first token expires.
package db
