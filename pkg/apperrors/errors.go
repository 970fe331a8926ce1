package apperrors

import "errors"

var (
	ErrNotConnected          = errors.New("not connected to database")
	ErrUnknownSchema         = errors.New("schema was not discovered on this connection")
	ErrEmptyQuestion         = errors.New("question is empty")
	ErrNoSQLFound            = errors.New("no SQL statement found in model output")
	ErrStatementNotAllowed   = errors.New("statement not allowed by policy")
	ErrUnsupportedDatasource = errors.New("unsupported datasource type")
	ErrUnsupportedProvider   = errors.New("unsupported LLM provider")
)
