// Package docs registers the API description served at /swagger/doc.json.
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
                "summary": "Log in as the paper author",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}
            }
        },
        "/paper": {
            "get": {
                "summary": "Get the paper, optionally filtered by q",
                "parameters": [{"type": "string", "name": "q", "in": "query"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/paper/export": {
            "get": {
                "summary": "Download the paper as paper.json",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/paper/import": {
            "post": {
                "summary": "Replace the paper with an exported file",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        },
        "/paper/confirm": {
            "get": {"summary": "Get the pending deletion", "responses": {"200": {"description": "OK"}}},
            "post": {"summary": "Confirm the pending deletion", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}},
            "delete": {"summary": "Cancel the pending deletion", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/paper/sections": {
            "post": {"summary": "Add a section", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/paper/sections/order": {
            "put": {"summary": "Reorder sections", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/paper/sections/move": {
            "post": {"summary": "Move a section", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/paper/sections/{sectionId}": {
            "put": {"summary": "Edit a section", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"summary": "Request deletion of a section", "responses": {"202": {"description": "Accepted"}}}
        },
        "/paper/sections/{sectionId}/title": {
            "patch": {"summary": "Rename a section", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/paper/sections/{sectionId}/duplicate": {
            "post": {"summary": "Duplicate a section", "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found"}}}
        },
        "/paper/sections/{sectionId}/groups": {
            "post": {"summary": "Add a question group", "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found"}}}
        },
        "/paper/sections/{sectionId}/groups/{groupId}": {
            "put": {"summary": "Edit a question group", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"summary": "Request deletion of a question group", "responses": {"202": {"description": "Accepted"}}}
        },
        "/paper/sections/{sectionId}/groups/{groupId}/questions": {
            "post": {"summary": "Add a question", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/paper/sections/{sectionId}/groups/{groupId}/questions/{questionId}": {
            "put": {"summary": "Edit a question", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"summary": "Request deletion of a question", "responses": {"202": {"description": "Accepted"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Paper Builder API",
	Description:      "Question paper authoring with live preview",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
