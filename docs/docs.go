// Package docs is generated by swaggo/swag from the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "email": "support@example.com"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/account-number": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Get the caller's account number",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.accountNumberResponse"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "404": {"description": "Account not found", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/balance": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Get account balance",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.balanceResponse"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "404": {"description": "Account not found", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/deposit": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Credits the caller's account and records a deposit ledger entry.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Deposit money",
                "parameters": [{"description": "Amount to deposit", "name": "deposit", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.AmountRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.MovementResult"}},
                    "400": {"description": "Invalid amount", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "404": {"description": "Account not found", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/transactions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Entries touching the caller's account, newest first. Pass next_cursor as \"before\" to fetch the following page.",
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "List ledger history",
                "parameters": [
                    {"type": "integer", "description": "Page size (default 20, max 100)", "name": "limit", "in": "query"},
                    {"type": "integer", "description": "Return entries with an id below this cursor", "name": "before", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.TransactionPage"}},
                    "400": {"description": "Invalid paging parameters", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "404": {"description": "Account not found", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/transfer": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Moves the amount from the caller's account to the account with the given 20-digit number.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Transfer money to another account",
                "parameters": [{"description": "Destination and amount", "name": "transfer", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.TransferRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.TransferResult"}},
                    "400": {"description": "Invalid amount, malformed destination or self transfer", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "404": {"description": "Source or destination account not found", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "409": {"description": "Insufficient funds", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/api/withdrawal": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Debits the caller's account if the balance covers the amount.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transactions"],
                "summary": "Withdraw money",
                "parameters": [{"description": "Amount to withdraw", "name": "withdrawal", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.AmountRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/service.MovementResult"}},
                    "400": {"description": "Invalid amount", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "401": {"description": "Missing or invalid token", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "404": {"description": "Account not found", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "409": {"description": "Insufficient funds", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "get the status of server",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Show the status of server",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/register": {
            "post": {
                "description": "Creates the user and its zero-balance account in one transaction.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Register a user",
                "parameters": [{"description": "Credentials", "name": "user", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.RegisterRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/service.Registration"}},
                    "400": {"description": "Invalid payload or username taken", "schema": {"$ref": "#/definitions/common.AppError"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/common.AppError"}}
                }
            }
        }
    },
    "definitions": {
        "common.AppError": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "kind": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.accountNumberResponse": {
            "type": "object",
            "properties": {"account_number": {"type": "string"}}
        },
        "handler.balanceResponse": {
            "type": "object",
            "properties": {"balance": {"type": "string"}}
        },
        "model.AmountRequest": {
            "type": "object",
            "properties": {"amount": {"type": "string", "example": "50.00"}}
        },
        "model.LedgerEntry": {
            "type": "object",
            "properties": {
                "amount": {"type": "string"},
                "id": {"type": "integer"},
                "origin_account": {"type": "integer"},
                "origin_account_number": {"type": "string"},
                "origin_user_name": {"type": "string"},
                "target_account": {"type": "integer"},
                "target_account_number": {"type": "string"},
                "target_user_name": {"type": "string"},
                "transaction_date": {"type": "string"}
            }
        },
        "model.RegisterRequest": {
            "type": "object",
            "required": ["password", "user_name"],
            "properties": {
                "password": {"type": "string", "maxLength": 72, "minLength": 8},
                "user_name": {"type": "string", "maxLength": 50, "minLength": 3}
            }
        },
        "model.TransferRequest": {
            "type": "object",
            "required": ["target_account"],
            "properties": {
                "amount": {"type": "string", "example": "30.00"},
                "target_account": {"type": "string"}
            }
        },
        "service.MovementResult": {
            "type": "object",
            "properties": {
                "account_number": {"type": "string"},
                "amount": {"type": "string"},
                "new_balance": {"type": "string"},
                "transaction_id": {"type": "integer"}
            }
        },
        "service.Registration": {
            "type": "object",
            "properties": {
                "account_number": {"type": "string"},
                "user_id": {"type": "integer"}
            }
        },
        "service.TransactionPage": {
            "type": "object",
            "properties": {
                "next_cursor": {"type": "integer"},
                "transactions": {"type": "array", "items": {"$ref": "#/definitions/model.LedgerEntry"}}
            }
        },
        "service.TransferResult": {
            "type": "object",
            "properties": {
                "amount": {"type": "string"},
                "new_balance": {"type": "string"},
                "transaction_id": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Bank Ledger API",
	Description:      "Account ledger service: deposits, withdrawals and transfers recorded atomically with their ledger entries.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
