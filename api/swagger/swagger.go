package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Waitlist API",
        "description": "Email waitlist enrollment with stable queue positions.",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Waitlist", "description": "Enrollment and admin queries"},
        {"name": "Health", "description": "Probes (served at the root, outside basePath)"}
    ],
    "paths": {
        "/waitlist": {
            "post": {
                "tags": ["Waitlist"],
                "summary": "Join the waitlist",
                "description": "Records the email once and returns its position. Repeating an email returns the original position with alreadyEnrolled set.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "200": {"description": "Enrolled", "schema": {"$ref": "#/definitions/EnrollResult"}},
                    "400": {"description": "Invalid input", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "429": {"description": "Rate limited", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "500": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "get": {
                "tags": ["Waitlist"],
                "summary": "Waitlist overview",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/WaitlistStats"}},
                    "500": {"description": "Store unavailable", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/waitlist/entries": {
            "get": {
                "tags": ["Waitlist"],
                "summary": "List waitlist entries",
                "produces": ["application/json"],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["pending", "invited", "activated"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/EntryPage"}},
                    "400": {"description": "Invalid status", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/waitlist/export": {
            "get": {
                "tags": ["Waitlist"],
                "summary": "Export the waitlist",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Attachment", "schema": {"type": "file"}},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "EnrollRequest": {
            "type": "object",
            "required": ["email"],
            "properties": {
                "email": {"type": "string", "maxLength": 255},
                "name": {"type": "string", "maxLength": 255}
            }
        },
        "EnrollResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "position": {"type": "integer", "minimum": 1},
                "alreadyEnrolled": {"type": "boolean"}
            }
        },
        "RecentSignup": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "name": {"type": "string", "x-nullable": true},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "WaitlistStats": {
            "type": "object",
            "properties": {
                "totalCount": {"type": "integer"},
                "thisWeek": {"type": "integer"},
                "withNames": {"type": "integer"},
                "recentSignups": {"type": "array", "items": {"$ref": "#/definitions/RecentSignup"}}
            }
        },
        "WaitlistEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "string", "format": "uuid"},
                "email": {"type": "string"},
                "name": {"type": "string", "x-nullable": true},
                "status": {"type": "string", "enum": ["pending", "invited", "activated"]},
                "notes": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"},
                "totalCount": {"type": "integer"}
            }
        },
        "EntryPage": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/WaitlistEntry"}},
                "pagination": {"$ref": "#/definitions/Pagination"}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "kind": {"type": "string", "enum": ["InvalidInput", "NotFound", "Conflict", "RateLimited", "StoreUnavailable", "Internal"]},
                "error": {"type": "string"}
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
