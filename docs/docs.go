// Package docs holds the Swagger 2.0 document served under /swagger and
// converted to OpenAPI 3 at /openapi.json.
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
        "/expenses": {
            "get": {
                "description": "Re-fetch all expenses and return the filtered list with both totals",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "expenses"
                ],
                "summary": "List expenses",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Start date (YYYY-MM-DD), inclusive",
                        "name": "startDate",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "End date (YYYY-MM-DD), inclusive",
                        "name": "endDate",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "default": "ALL",
                        "description": "COMPANY_OFFICIAL, PERSONAL, ADVANCE or ALL",
                        "name": "type",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "default": "ALL",
                        "description": "PAID, UNPAID or ALL",
                        "name": "status",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.ExpenseListResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ProblemDetails"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/handler.ProblemDetails"
                        }
                    }
                }
            },
            "post": {
                "description": "Create an expense from JSON, or from multipart form fields with an optional receipt image",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "expenses"
                ],
                "summary": "Create an expense",
                "consumes": [
                    "application/json",
                    "multipart/form-data"
                ],
                "parameters": [
                    {
                        "description": "Expense creation request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.CreateExpenseRequest"
                        }
                    },
                    {
                        "type": "file",
                        "description": "Receipt image (max 10MB)",
                        "name": "receipt",
                        "in": "formData"
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/handler.ExpenseResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ProblemDetails"
                        }
                    },
                    "429": {
                        "description": "Too Many Requests",
                        "schema": {
                            "$ref": "#/definitions/handler.ProblemDetails"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/handler.ReceiptNotLinkedProblem"
                        }
                    }
                }
            }
        },
        "/expenses/summary": {
            "get": {
                "description": "Get the unpaid liability for the filter and the amount paid this month",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "expenses"
                ],
                "summary": "Get expense totals",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Start date (YYYY-MM-DD), inclusive",
                        "name": "startDate",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "End date (YYYY-MM-DD), inclusive",
                        "name": "endDate",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "default": "ALL",
                        "description": "COMPANY_OFFICIAL, PERSONAL, ADVANCE or ALL",
                        "name": "type",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "default": "ALL",
                        "description": "PAID, UNPAID or ALL",
                        "name": "status",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.SummaryResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ProblemDetails"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/handler.ProblemDetails"
                        }
                    }
                }
            }
        },
        "/expenses/export": {
            "get": {
                "description": "Download the filtered list and totals as an XLSX workbook",
                "produces": [
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
                ],
                "tags": [
                    "expenses"
                ],
                "summary": "Export expenses",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Start date (YYYY-MM-DD), inclusive",
                        "name": "startDate",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "description": "End date (YYYY-MM-DD), inclusive",
                        "name": "endDate",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "default": "ALL",
                        "description": "COMPANY_OFFICIAL, PERSONAL, ADVANCE or ALL",
                        "name": "type",
                        "in": "query"
                    },
                    {
                        "type": "string",
                        "default": "ALL",
                        "description": "PAID, UNPAID or ALL",
                        "name": "status",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ProblemDetails"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/handler.ProblemDetails"
                        }
                    }
                }
            }
        },
        "/expenses/seed": {
            "post": {
                "description": "Write the sample expenses when none exist, or always with force=true",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "expenses"
                ],
                "summary": "Seed sample expenses",
                "parameters": [
                    {
                        "type": "boolean",
                        "default": false,
                        "description": "Seed even when expenses exist",
                        "name": "force",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.SeedResponse"
                        }
                    },
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/handler.SeedResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ProblemDetails"
                        }
                    },
                    "429": {
                        "description": "Too Many Requests",
                        "schema": {
                            "$ref": "#/definitions/handler.ProblemDetails"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/handler.ProblemDetails"
                        }
                    }
                }
            }
        },
        "/expenses/{id}": {
            "put": {
                "description": "Apply a partial update; absent fields are left unchanged",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "expenses"
                ],
                "summary": "Update an expense",
                "consumes": [
                    "application/json",
                    "multipart/form-data"
                ],
                "parameters": [
                    {
                        "type": "string",
                        "description": "Expense ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Expense update request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handler.UpdateExpenseRequest"
                        }
                    },
                    {
                        "type": "file",
                        "description": "Replacement receipt image (max 10MB)",
                        "name": "receipt",
                        "in": "formData"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/handler.ExpenseResponse"
                        }
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {
                            "$ref": "#/definitions/handler.ProblemDetails"
                        }
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ProblemDetails"
                        }
                    },
                    "429": {
                        "description": "Too Many Requests",
                        "schema": {
                            "$ref": "#/definitions/handler.ProblemDetails"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/handler.ProblemDetails"
                        }
                    }
                }
            },
            "delete": {
                "description": "Delete an expense; its receipt object is kept",
                "tags": [
                    "expenses"
                ],
                "summary": "Delete an expense",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Expense ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {
                            "$ref": "#/definitions/handler.ProblemDetails"
                        }
                    },
                    "429": {
                        "description": "Too Many Requests",
                        "schema": {
                            "$ref": "#/definitions/handler.ProblemDetails"
                        }
                    },
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {
                            "$ref": "#/definitions/handler.ProblemDetails"
                        }
                    }
                }
            }
        },
        "/ws": {
            "get": {
                "description": "Upgrade to a WebSocket that receives expense events. With ownerId only that owner's events (and unowned ones) are delivered. Sending {\"subscribe\": \"\u003cownerId\u003e\"} switches the owner; an empty value follows every owner.",
                "tags": [
                    "realtime"
                ],
                "summary": "Subscribe to expense changes",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Only receive events for this owner",
                        "name": "ownerId",
                        "in": "query"
                    }
                ],
                "responses": {
                    "101": {
                        "description": "Switching Protocols"
                    }
                }
            }
        }
    },
    "definitions": {
        "handler.CreateExpenseRequest": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "string",
                    "example": "125.50"
                },
                "currency": {
                    "type": "string",
                    "example": "TRY"
                },
                "description": {
                    "type": "string",
                    "example": "Taksi"
                },
                "date": {
                    "type": "string",
                    "example": "2024-03-01"
                },
                "type": {
                    "type": "string",
                    "example": "PERSONAL"
                },
                "status": {
                    "type": "string",
                    "example": "UNPAID"
                },
                "ownerId": {
                    "type": "string",
                    "example": "ayse"
                },
                "paymentMethod": {
                    "type": "string",
                    "example": "CASH"
                },
                "projectId": {
                    "type": "string"
                },
                "category": {
                    "type": "string"
                }
            }
        },
        "handler.UpdateExpenseRequest": {
            "type": "object",
            "properties": {
                "amount": {
                    "type": "string"
                },
                "currency": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "date": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "ownerId": {
                    "type": "string"
                },
                "paymentMethod": {
                    "type": "string"
                },
                "projectId": {
                    "type": "string"
                },
                "category": {
                    "type": "string"
                }
            }
        },
        "handler.ExpenseResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "amount": {
                    "type": "string"
                },
                "currency": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "date": {
                    "type": "string"
                },
                "type": {
                    "type": "string"
                },
                "status": {
                    "type": "string"
                },
                "ownerId": {
                    "type": "string"
                },
                "paymentMethod": {
                    "type": "string"
                },
                "projectId": {
                    "type": "string"
                },
                "category": {
                    "type": "string"
                },
                "receiptUrl": {
                    "type": "string"
                },
                "createdAt": {
                    "type": "string"
                },
                "updatedAt": {
                    "type": "string"
                }
            }
        },
        "handler.TotalsResponse": {
            "type": "object",
            "properties": {
                "unpaidLiability": {
                    "type": "string"
                },
                "paidThisMonth": {
                    "type": "string"
                }
            }
        },
        "handler.ExpenseListResponse": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/handler.ExpenseResponse"
                    }
                },
                "totals": {
                    "$ref": "#/definitions/handler.TotalsResponse"
                },
                "count": {
                    "type": "integer"
                }
            }
        },
        "handler.SummaryResponse": {
            "type": "object",
            "properties": {
                "totals": {
                    "$ref": "#/definitions/handler.TotalsResponse"
                },
                "count": {
                    "type": "integer"
                },
                "monthStart": {
                    "type": "string"
                },
                "monthEnd": {
                    "type": "string"
                }
            }
        },
        "handler.SeedResponse": {
            "type": "object",
            "properties": {
                "created": {
                    "type": "integer"
                },
                "data": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/handler.ExpenseResponse"
                    }
                }
            }
        },
        "handler.ValidationError": {
            "type": "object",
            "properties": {
                "field": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "handler.ProblemDetails": {
            "type": "object",
            "properties": {
                "type": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                },
                "detail": {
                    "type": "string"
                },
                "instance": {
                    "type": "string"
                },
                "errors": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/handler.ValidationError"
                    }
                }
            }
        },
        "handler.ReceiptNotLinkedProblem": {
            "type": "object",
            "properties": {
                "type": {
                    "type": "string"
                },
                "title": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                },
                "detail": {
                    "type": "string"
                },
                "instance": {
                    "type": "string"
                },
                "expenseId": {
                    "type": "string"
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Giderler API",
	Description:      "Expense tracking for a small company: shared expense records with receipts, filters, totals and XLSX export.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
