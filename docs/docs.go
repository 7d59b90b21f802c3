// Package docs registers the OpenAPI document of the createform API.
// Regenerate with: swag init -g cmd/server/main.go -o docs
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
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Owner login",
                "parameters": [
                    {"description": "credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.LoginResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/forms/{surveyId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["forms"],
                "summary": "Published form without scores",
                "parameters": [
                    {"type": "string", "description": "survey id", "name": "surveyId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.PublicForm"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/forms/{surveyId}/submissions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["forms"],
                "summary": "Submit answers and get the outcome",
                "parameters": [
                    {"type": "string", "description": "survey id", "name": "surveyId", "in": "path", "required": true},
                    {"description": "answers", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.SubmitRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.SubmitResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/surveys": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["surveys"],
                "summary": "Create a draft survey",
                "parameters": [
                    {"description": "survey", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.SurveyRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Survey"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/surveys/{surveyId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["surveys"],
                "summary": "Survey with questions and outcomes",
                "parameters": [
                    {"type": "string", "description": "survey id", "name": "surveyId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.SurveyDetail"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/surveys/{surveyId}/outcomes": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["outcomes"],
                "summary": "Add an outcome score range",
                "parameters": [
                    {"type": "string", "description": "survey id", "name": "surveyId", "in": "path", "required": true},
                    {"description": "outcome", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.OutcomeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Outcome"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/surveys/{surveyId}/submissions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["submissions"],
                "summary": "Recorded submissions, newest first",
                "parameters": [
                    {"type": "string", "description": "survey id", "name": "surveyId", "in": "path", "required": true},
                    {"type": "string", "description": "exact outcome title", "name": "outcomeTitle", "in": "query"},
                    {"type": "integer", "description": "lowest total score", "name": "minScore", "in": "query"},
                    {"type": "integer", "description": "highest total score", "name": "maxScore", "in": "query"},
                    {"type": "string", "description": "RFC3339 or YYYY-MM-DD", "name": "since", "in": "query"},
                    {"type": "string", "description": "RFC3339 or YYYY-MM-DD, exclusive", "name": "until", "in": "query"},
                    {"type": "boolean", "description": "only with or without contact data", "name": "hasLead", "in": "query"},
                    {"type": "integer", "description": "page size", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Submission"}}}
                }
            }
        },
        "/surveys/{surveyId}/analytics": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["submissions"],
                "summary": "Aggregated results of a survey",
                "parameters": [
                    {"type": "string", "description": "survey id", "name": "surveyId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.AnalyticsSummary"}}
                }
            }
        }
    },
    "definitions": {
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "missing": {"type": "array", "items": {"type": "string"}}
            }
        },
        "model.LoginRequest": {
            "type": "object",
            "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "model.LoginResponse": {
            "type": "object",
            "properties": {"token": {"type": "string"}, "ownerId": {"type": "string"}}
        },
        "model.PublicForm": {"type": "object"},
        "model.SubmitRequest": {"type": "object"},
        "model.SubmitResponse": {
            "type": "object",
            "properties": {
                "submissionId": {"type": "string"},
                "totalScore": {"type": "integer"},
                "outcomeTitle": {"type": "string"},
                "outcome": {"type": "object"}
            }
        },
        "model.SurveyRequest": {"type": "object"},
        "model.Survey": {"type": "object"},
        "model.SurveyDetail": {"type": "object"},
        "model.OutcomeRequest": {"type": "object"},
        "model.Outcome": {"type": "object"},
        "model.Submission": {"type": "object"},
        "model.AnalyticsSummary": {"type": "object"}
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "createform API",
	Description:      "Scored survey and quiz builder: authoring, public forms, outcome resolution and submission analytics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
