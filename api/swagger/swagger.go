package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "PERUM ADP API",
        "description": "Housing estate administrative console: record lifecycle and archive exports",
        "version": "0.1.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Records", "description": "Active and archived record views with lifecycle transitions"},
        {"name": "Exports", "description": "Asynchronous CSV/PDF exports of archived records"},
        {"name": "System", "description": "Diagnostics"}
    ],
    "paths": {
        "/records/activity": {
            "get": {
                "tags": ["Records"],
                "summary": "Recent lifecycle activity across all kinds",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer", "description": "Max entries (default 50)"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/{kind}": {
            "get": {
                "tags": ["Records"],
                "summary": "List active records of one kind",
                "parameters": [
                    {"name": "kind", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "type": "string", "description": "Calendar day filter (YYYY-MM-DD)"},
                    {"name": "q", "in": "query", "type": "string", "description": "Search text"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown kind or bad filter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/{kind}/archived": {
            "get": {
                "tags": ["Records"],
                "summary": "List archived records of one kind",
                "parameters": [
                    {"name": "kind", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "type": "string", "description": "Calendar day filter (YYYY-MM-DD)"},
                    {"name": "q", "in": "query", "type": "string", "description": "Search text"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown kind or bad filter", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/{kind}/{id}/archive": {
            "post": {
                "tags": ["Records"],
                "summary": "Move an active record into the archive",
                "parameters": [
                    {"name": "kind", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Completed or partially completed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No active record with that id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Another transition in flight", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Record store unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/records/{kind}/archived/{id}/restore": {
            "post": {
                "tags": ["Records"],
                "summary": "Move an archived record back to the active view",
                "parameters": [
                    {"name": "kind", "in": "path", "required": true, "type": "string"},
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Completed or partially completed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No archived record with that id", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Another transition in flight", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Record store unavailable", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue an export of one kind's archived records",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export via signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/system/metrics": {
            "get": {
                "tags": ["System"],
                "summary": "Aggregated in-process counters",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "RecordView": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string"},
                "actorName": {"type": "string"},
                "payload": {"type": "object"}
            }
        },
        "TransitionResponse": {
            "type": "object",
            "properties": {
                "outcome": {"type": "string", "enum": ["COMPLETED", "PARTIALLY_COMPLETED", "FAILED"]},
                "operation": {"type": "string", "enum": ["archive", "restore"]},
                "kind": {"type": "string"},
                "sourceId": {"type": "string"},
                "newId": {"type": "string"},
                "duplicateRisk": {"type": "boolean"},
                "warning": {"type": "string"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            },
            "required": ["kind", "format"]
        },
        "ExportJobResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "status": {"type": "string"},
                "progress": {"type": "integer"}
            }
        },
        "ExportStatusResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "status": {"type": "string"},
                "progress": {"type": "integer"},
                "resultUrl": {"type": "string"},
                "error": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
