// Package docs registers the Swagger document served at /swagger.
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
        "/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Credentials", "name": "login", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/models.LoginRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/reports/project/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Reports"],
                "summary": "Project task completion report",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "start", "in": "query", "required": true},
                    {"type": "string", "name": "end", "in": "query", "required": true},
                    {"type": "string", "name": "format", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}
            }
        },
        "/reports/user/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Reports"],
                "summary": "User task completion report",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "start", "in": "query", "required": true},
                    {"type": "string", "name": "end", "in": "query", "required": true},
                    {"type": "string", "name": "format", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}
            }
        },
        "/reports/team/{projectId}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Reports"],
                "summary": "Team summary report",
                "parameters": [
                    {"type": "integer", "name": "projectId", "in": "path", "required": true},
                    {"type": "string", "name": "timeframe", "in": "query", "required": true},
                    {"type": "string", "name": "start", "in": "query", "required": true},
                    {"type": "string", "name": "format", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/reports/logged-time/project/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Reports"],
                "summary": "Logged time by project",
                "parameters": [
                    {"type": "integer", "name": "id", "in": "path", "required": true},
                    {"type": "string", "name": "format", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/reports/logged-time/department/{department}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Reports"],
                "summary": "Logged time by department",
                "parameters": [
                    {"type": "string", "name": "department", "in": "path", "required": true},
                    {"type": "string", "name": "format", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/projects": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Projects"], "summary": "List projects",
                    "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Projects"], "summary": "Create a project",
                     "responses": {"201": {"description": "Created"}, "403": {"description": "Forbidden"}}}
        },
        "/projects/{id}": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Projects"], "summary": "Get a project with its owner and members",
                    "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                    "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/projects/{id}/members": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Projects"], "summary": "Add a project member",
                     "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                     "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/tasks": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "List tasks",
                    "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Create a task",
                     "responses": {"201": {"description": "Created"}}}
        },
        "/tasks/{id}/time": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["Tasks"], "summary": "Log time on a task",
                     "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                     "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "models.LoginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "password": {"type": "string"},
                "username": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Taskflow API",
	Description:      "Task tracking and report generation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
