// Package docs is generated by swag init and holds the OpenAPI document for the REST API.
// Regenerate with: swag init -g cmd/server/serve.go --parseDependency --parseInternal
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
        "/auth/login": {
            "post": {
                "description": "Exchange a username and password for a bearer token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handlers.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.CreateTokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/farms/{farmID}/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Pending approvals, approved acres over the last 7 days, overdue and due-soon jobs.\nA failed figure is left empty and named in errors.",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Farm dashboard",
                "parameters": [
                    {"type": "integer", "description": "Farm ID", "name": "farmID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/services.Dashboard"}}
                }
            }
        },
        "/farms/{farmID}/logs/{id}/approve": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "Approve submitted log",
                "parameters": [
                    {"type": "integer", "description": "Farm ID", "name": "farmID", "in": "path", "required": true},
                    {"type": "integer", "description": "Log ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/farms/{farmID}/pay-periods/{id}/run": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Recomputes the period's payroll lines. Without rate_card_id the farm's active card is used.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payroll"],
                "summary": "Run payroll",
                "parameters": [
                    {"type": "integer", "description": "Farm ID", "name": "farmID", "in": "path", "required": true},
                    {"type": "integer", "description": "Pay period ID", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Rate card",
                        "name": "request",
                        "in": "body",
                        "schema": {"$ref": "#/definitions/handlers.RunPayrollRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "412": {"description": "Precondition Failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handlers.CreateTokenResponse": {
            "type": "object",
            "properties": {
                "expires_at": {"type": "string"},
                "token": {"type": "string"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "kind": {"type": "string"}
            }
        },
        "handlers.LoginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        },
        "handlers.RunPayrollRequest": {
            "type": "object",
            "properties": {
                "rate_card_id": {"type": "integer"}
            }
        },
        "services.Dashboard": {
            "type": "object",
            "properties": {
                "acres_last_7_days": {"type": "number"},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}},
                "pending_approvals": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Farmhand API",
	Description:      "Farm operations: job logs, approvals, payroll and dashboards",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
