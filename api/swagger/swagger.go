package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Face Attendance API",
        "description": "Identity matching and attendance ledger engine",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Enrollment", "description": "Frame capture and registration"},
        {"name": "Classes", "description": "Session lifecycle"},
        {"name": "Attendance", "description": "Check-ins and the live session view"},
        {"name": "Summary", "description": "Derived summary and exports"},
        {"name": "Auth", "description": "Admin token exchange"}
    ],
    "paths": {
        "/enrollment/frames": {
            "post": {
                "tags": ["Enrollment"],
                "summary": "Store one enrollment frame",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveFrameRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollment/professors": {
            "post": {
                "tags": ["Enrollment"],
                "summary": "Register a professor and create their class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterProfessorRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No enrollment frames stored"}
                }
            }
        },
        "/enrollment/students": {
            "post": {
                "tags": ["Enrollment"],
                "summary": "Register a student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/open": {
            "post": {
                "tags": ["Classes"],
                "summary": "Open the next session of the recognized professor's latest class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProbeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Outcome", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}/checkins": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record attendance for the recognized student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CheckInRequest"}}
                ],
                "responses": {
                    "200": {"description": "Outcome", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown class"}
                }
            }
        },
        "/classes/{id}/summary": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Live view of the current session",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}/summary/rebuild": {
            "post": {
                "tags": ["Summary"],
                "summary": "Recompute the per-student summary",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/classes/{id}/summary/export": {
            "get": {
                "tags": ["Summary"],
                "summary": "Export the class summary as CSV or PDF",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "Rendered document"}
                }
            }
        },
        "/auth/token": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange the admin key for a bearer token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Bad key"}
                }
            }
        }
    },
    "definitions": {
        "SaveFrameRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "code": {"type": "string"},
                "role": {"type": "string", "enum": ["PROFESSOR", "STUDENT"]},
                "image": {"type": "string", "description": "base64 payload or data URL"}
            },
            "required": ["name", "code", "role", "image"]
        },
        "RegisterProfessorRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "code": {"type": "string"},
                "class_name": {"type": "string"}
            },
            "required": ["name", "code", "class_name"]
        },
        "RegisterStudentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "code": {"type": "string"},
                "class_id": {"type": "integer"}
            },
            "required": ["name", "code"]
        },
        "ProbeRequest": {
            "type": "object",
            "properties": {
                "image": {"type": "string", "description": "base64 payload or data URL"}
            },
            "required": ["image"]
        },
        "CheckInRequest": {
            "type": "object",
            "properties": {
                "image": {"type": "string", "description": "base64 payload or data URL"},
                "label": {"type": "string", "description": "pre-resolved label, skips recognition"}
            }
        },
        "TokenRequest": {
            "type": "object",
            "properties": {
                "key": {"type": "string"}
            },
            "required": ["key"]
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
