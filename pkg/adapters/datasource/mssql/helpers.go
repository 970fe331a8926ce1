package mssql

import (
	"fmt"
	"strings"
)

// mapSQLServerType maps SQL Server type names to standard type names.
func mapSQLServerType(sqlServerType string) string {
	sqlServerType = strings.ToUpper(sqlServerType)

	switch sqlServerType {
	case "INT":
		return "INTEGER"
	case "DECIMAL", "NUMERIC":
		return "NUMERIC"
	case "MONEY", "SMALLMONEY":
		return "MONEY"
	case "FLOAT":
		return "DOUBLE PRECISION"
	case "CHAR", "NCHAR":
		return "CHAR"
	case "VARCHAR", "NVARCHAR":
		return "VARCHAR"
	case "TEXT", "NTEXT":
		return "TEXT"
	case "BINARY", "VARBINARY", "IMAGE":
		return "BINARY"
	case "DATETIME", "DATETIME2", "SMALLDATETIME":
		return "TIMESTAMP"
	case "DATETIMEOFFSET":
		return "TIMESTAMP WITH TIME ZONE"
	case "BIT":
		return "BOOLEAN"
	case "UNIQUEIDENTIFIER":
		return "UUID"
	default:
		return sqlServerType
	}
}

// isNumericType returns true for exact numerics the driver returns as []byte.
func isNumericType(sqlType string) bool {
	switch strings.ToUpper(sqlType) {
	case "DECIMAL", "NUMERIC", "MONEY", "SMALLMONEY":
		return true
	}
	return false
}

// isStringType returns true if the type is a string type in SQL Server.
func isStringType(sqlType string) bool {
	switch strings.ToUpper(sqlType) {
	case "CHAR", "NCHAR", "VARCHAR", "NVARCHAR", "TEXT", "NTEXT", "XML":
		return true
	}
	return false
}

func isUniqueIdentifier(sqlType string) bool {
	return strings.EqualFold(sqlType, "UNIQUEIDENTIFIER")
}

// uniqueColumnNames names unnamed columns ("column1") and suffixes repeats ("name_2")
// so every value in a row map has its own key.
func uniqueColumnNames(names []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			name = fmt.Sprintf("column%d", i+1)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			candidate := fmt.Sprintf("%s_%d", name, n)
			for seen[candidate] > 0 {
				n++
				candidate = fmt.Sprintf("%s_%d", name, n)
			}
			seen[candidate]++
			name = candidate
		}
		out[i] = name
	}
	return out
}
