// Package docs holds the swagger document served at /swagger, kept in the swag
// template layout so gin-swagger can load it.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/accounts": {
            "get": {
                "description": "Lists accounts ordered by name, optionally filtered by category and name",
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "List accounts",
                "parameters": [
                    {"enum": ["ASSET", "LIABILITY", "EQUITY", "REVENUE", "EXPENSE"], "type": "string", "description": "Account category", "name": "category", "in": "query"},
                    {"type": "string", "description": "Case-insensitive name fragment", "name": "name", "in": "query"},
                    {"type": "integer", "default": 50, "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Token from the previous page", "name": "nextToken", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListAccountsResponse"}},
                    "400": {"description": "Invalid query parameters", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Failed to list accounts", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Adds an account to the chart of accounts with a zero balance",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Register a new account",
                "parameters": [
                    {"description": "Account details", "name": "account", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateAccountRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.AccountResponse"}},
                    "400": {"description": "Invalid input format or validation error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Account name already registered", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Failed to create account", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/accounts/{accountID}": {
            "get": {
                "description": "Retrieves an account together with its derived balance",
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Get an account by ID",
                "parameters": [
                    {"type": "string", "description": "Account ID", "name": "accountID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AccountDetailResponse"}},
                    "404": {"description": "Account not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Failed to retrieve account", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "delete": {
                "description": "Removes an account that no journal line references",
                "tags": ["accounts"],
                "summary": "Delete an account",
                "parameters": [
                    {"type": "string", "description": "Account ID to delete", "name": "accountID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Account not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Account in use", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Failed to delete account", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "patch": {
                "description": "Renames or recategorises an account. Posted journal lines are not rewritten.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Update an account",
                "parameters": [
                    {"type": "string", "description": "Account ID to update", "name": "accountID", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "account", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.UpdateAccountRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AccountResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Account not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Name used by another account", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Failed to update account", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/accounts/{accountID}/balance": {
            "get": {
                "description": "Folds the journal into the account's balance signed by its normal side",
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Get an account balance",
                "parameters": [
                    {"type": "string", "description": "Account ID", "name": "accountID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AccountBalanceResponse"}},
                    "404": {"description": "Account not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Failed to calculate balance", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/journal-entries": {
            "get": {
                "description": "Lists entries newest first, optionally filtered by account, date range and description",
                "produces": ["application/json"],
                "tags": ["journal-entries"],
                "summary": "List journal entries",
                "parameters": [
                    {"type": "string", "description": "Only entries with a line on this account", "name": "accountId", "in": "query"},
                    {"type": "string", "description": "Inclusive start date (YYYY-MM-DD)", "name": "from", "in": "query"},
                    {"type": "string", "description": "Inclusive end date (YYYY-MM-DD)", "name": "to", "in": "query"},
                    {"type": "string", "description": "Case-insensitive description fragment", "name": "description", "in": "query"},
                    {"type": "integer", "default": 50, "description": "Page size", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Token from the previous page", "name": "nextToken", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.ListJournalEntriesResponse"}},
                    "400": {"description": "Invalid query parameters", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Failed to list entries", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Validates and atomically records a balanced entry with at least two lines",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["journal-entries"],
                "summary": "Post a journal entry",
                "parameters": [
                    {"description": "Entry with its lines", "name": "entry", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateJournalEntryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.JournalEntryResponse"}},
                    "400": {"description": "Validation error or unbalanced entry", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "A line references an unknown account", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "422": {"description": "Rejected by a posting policy", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Failed to post entry", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Timed out or could not be serialized; safe to retry", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/journal-entries/{entryID}": {
            "get": {
                "description": "Retrieves an entry with its lines in posting order",
                "produces": ["application/json"],
                "tags": ["journal-entries"],
                "summary": "Get a journal entry",
                "parameters": [
                    {"type": "string", "description": "Entry ID", "name": "entryID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.JournalEntryResponse"}},
                    "404": {"description": "Entry not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Failed to retrieve entry", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/journal-entries/{entryID}/reverse": {
            "post": {
                "description": "Posts a new entry with every side swapped. An entry can be reversed once.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["journal-entries"],
                "summary": "Reverse a journal entry",
                "parameters": [
                    {"type": "string", "description": "Entry ID to reverse", "name": "entryID", "in": "path", "required": true},
                    {"description": "Optional date and description", "name": "overrides", "in": "body", "schema": {"$ref": "#/definitions/dto.ReverseJournalEntryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.JournalEntryResponse"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Entry not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Entry already reversed", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Failed to reverse entry", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.AccountBalanceResponse": {
            "type": "object",
            "properties": {
                "accountID": {"type": "string"},
                "asOf": {"type": "string"},
                "balance": {"type": "string"},
                "category": {"type": "string"},
                "creditTotal": {"type": "string"},
                "debitTotal": {"type": "string"},
                "normalSide": {"type": "string"}
            }
        },
        "dto.AccountDetailResponse": {
            "type": "object",
            "properties": {
                "accountID": {"type": "string"},
                "balance": {"type": "string"},
                "category": {"type": "string"},
                "createdAt": {"type": "string"},
                "lastUpdatedAt": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "dto.AccountResponse": {
            "type": "object",
            "properties": {
                "accountID": {"type": "string"},
                "category": {"type": "string"},
                "createdAt": {"type": "string"},
                "lastUpdatedAt": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "dto.CreateAccountRequest": {
            "type": "object",
            "required": ["category"],
            "properties": {
                "category": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "dto.CreateJournalEntryRequest": {
            "type": "object",
            "required": ["date"],
            "properties": {
                "date": {"type": "string", "example": "2024-03-31"},
                "description": {"type": "string"},
                "lines": {"type": "array", "items": {"$ref": "#/definitions/dto.CreateJournalLineRequest"}}
            }
        },
        "dto.CreateJournalLineRequest": {
            "type": "object",
            "properties": {
                "accountID": {"type": "string"},
                "amount": {"type": "string", "example": "25000.00"},
                "side": {"type": "string"}
            }
        },
        "dto.ErrorDetails": {
            "type": "object",
            "properties": {
                "creditTotal": {"type": "string"},
                "debitTotal": {"type": "string"},
                "field": {"type": "string"},
                "id": {"type": "string"},
                "lineIndex": {"type": "integer"},
                "policy": {"type": "string"},
                "resource": {"type": "string"},
                "retryable": {"type": "boolean"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "details": {"$ref": "#/definitions/dto.ErrorDetails"},
                "error": {"type": "string"}
            }
        },
        "dto.JournalEntryResponse": {
            "type": "object",
            "properties": {
                "createdAt": {"type": "string"},
                "creditTotal": {"type": "string"},
                "date": {"type": "string"},
                "debitTotal": {"type": "string"},
                "description": {"type": "string"},
                "entryID": {"type": "string"},
                "lines": {"type": "array", "items": {"$ref": "#/definitions/dto.JournalLineResponse"}},
                "reversesEntryID": {"type": "string"}
            }
        },
        "dto.JournalLineResponse": {
            "type": "object",
            "properties": {
                "accountID": {"type": "string"},
                "amount": {"type": "string"},
                "lineID": {"type": "string"},
                "lineNo": {"type": "integer"},
                "side": {"type": "string"}
            }
        },
        "dto.ListAccountsResponse": {
            "type": "object",
            "properties": {
                "accounts": {"type": "array", "items": {"$ref": "#/definitions/dto.AccountResponse"}},
                "nextToken": {"type": "string"}
            }
        },
        "dto.ListJournalEntriesResponse": {
            "type": "object",
            "properties": {
                "entries": {"type": "array", "items": {"$ref": "#/definitions/dto.JournalEntryResponse"}},
                "nextToken": {"type": "string"}
            }
        },
        "dto.ReverseJournalEntryRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string", "example": "2024-04-01"},
                "description": {"type": "string"}
            }
        },
        "dto.UpdateAccountRequest": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "name": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Ledger Core API",
	Description:      "Double-entry ledger: accounts, journal entries and derived balances.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
