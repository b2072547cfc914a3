package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Lesson Grid API",
        "description": "Generates, reviews and confirms the weekly lesson slot grid of an academic year.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}
    },
    "security": [{"BearerAuth": []}],
    "tags": [
        {"name": "Academic Years", "description": "Academic years owning lesson slots"},
        {"name": "Lesson Grid", "description": "Generate, review and confirm a weekly grid"},
        {"name": "Lesson Slots", "description": "Persisted lesson slots and timetable export"}
    ],
    "paths": {
        "/academic-years": {
            "get": {
                "tags": ["Academic Years"],
                "summary": "List academic years",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "isActive", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string", "enum": ["name", "start_date", "end_date", "created_at"]},
                    {"name": "order", "in": "query", "type": "string", "enum": ["asc", "desc"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Academic Years"],
                "summary": "Create academic year",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAcademicYearRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Name already used", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic-years/active": {
            "get": {
                "tags": ["Academic Years"],
                "summary": "Get active academic year",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No active year", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic-years/{id}": {
            "get": {
                "tags": ["Academic Years"],
                "summary": "Get academic year",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Academic Years"],
                "summary": "Update academic year",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateAcademicYearRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Academic Years"],
                "summary": "Delete academic year",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "412": {"description": "Active or has lesson slots", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic-years/{id}/activate": {
            "post": {
                "tags": ["Academic Years"],
                "summary": "Mark academic year active",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic-years/{id}/lesson-grid/previews": {
            "post": {
                "tags": ["Lesson Grid"],
                "summary": "Generate a lesson grid preview",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ScheduleConfig"}}
                ],
                "responses": {
                    "201": {"description": "Preview created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Form rejected; meta carries field or breakStart", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic-years/{id}/lesson-grid/config": {
            "get": {
                "tags": ["Lesson Grid"],
                "summary": "Get the last confirmed grid form",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Never confirmed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lesson-grid/previews/{previewId}": {
            "get": {
                "tags": ["Lesson Grid"],
                "summary": "Get a preview",
                "parameters": [{"name": "previewId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Lesson Grid"],
                "summary": "Discard a preview",
                "parameters": [{"name": "previewId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Discarded"},
                    "409": {"description": "Preview is being saved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lesson-grid/previews/{previewId}/slots/{weekday}/{lessonNumber}": {
            "delete": {
                "tags": ["Lesson Grid"],
                "summary": "Remove one slot from a preview",
                "parameters": [
                    {"name": "previewId", "in": "path", "required": true, "type": "string"},
                    {"name": "weekday", "in": "path", "required": true, "type": "string", "enum": ["MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"]},
                    {"name": "lessonNumber", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lesson-grid/previews/{previewId}/confirm": {
            "post": {
                "tags": ["Lesson Grid"],
                "summary": "Replace the academic year's lesson slots with the preview",
                "parameters": [{"name": "previewId", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Saved", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already saving", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "500": {"description": "Persistence failure; preview kept for retry", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic-years/{id}/lesson-slots": {
            "get": {
                "tags": ["Lesson Slots"],
                "summary": "List lesson slots",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Lesson Slots"],
                "summary": "Add a lesson slot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateLessonSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Position taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic-years/{id}/lesson-slots/export": {
            "get": {
                "tags": ["Lesson Slots"],
                "summary": "Download the weekly timetable",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/lesson-slots/{id}": {
            "delete": {
                "tags": ["Lesson Slots"],
                "summary": "Delete a lesson slot",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        }
    },
    "definitions": {
        "CreateAcademicYearRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "is_active": {"type": "boolean"}
            },
            "required": ["name", "start_date", "end_date"]
        },
        "UpdateAcademicYearRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"}
            },
            "required": ["name", "start_date", "end_date"]
        },
        "BreakInterval": {
            "type": "object",
            "properties": {
                "startTime": {"type": "string", "example": "09:15"},
                "durationMinutes": {"type": "string", "example": "15"}
            }
        },
        "ScheduleConfig": {
            "type": "object",
            "properties": {
                "startTime": {"type": "string", "example": "07:00"},
                "lessonDurationMinutes": {"type": "string", "example": "45"},
                "lessonCount": {"type": "string", "example": "8"},
                "weekdays": {"type": "array", "items": {"type": "string"}},
                "breaks": {"type": "array", "items": {"$ref": "#/definitions/BreakInterval"}}
            }
        },
        "CreateLessonSlotRequest": {
            "type": "object",
            "properties": {
                "lessonNumber": {"type": "integer"},
                "weekday": {"type": "string"},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"}
            },
            "required": ["lessonNumber", "weekday", "startTime", "endTime"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
                "pagination": {"$ref": "#/definitions/Pagination"},
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
