package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Room Booking API",
        "description": "Room directory and event scheduler that never double-books a room",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Rooms", "description": "Room directory"},
        {"name": "Events", "description": "Room bookings"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Database unreachable"}
                }
            }
        },
        "/rooms": {
            "get": {
                "tags": ["Rooms"],
                "summary": "List rooms",
                "parameters": [
                    {"name": "include", "in": "query", "type": "string", "enum": ["events"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Room"}}}
                }
            },
            "post": {
                "tags": ["Rooms"],
                "summary": "Register a room",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateRoomRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Room"}},
                    "400": {"description": "Validation error or duplicate name", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/rooms/{id}": {
            "get": {
                "tags": ["Rooms"],
                "summary": "Get a room",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Room"}},
                    "404": {"description": "Room not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "delete": {
                "tags": ["Rooms"],
                "summary": "Delete a room without events",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/Room"}},
                    "400": {"description": "Room still has events", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Room not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List events, optionally those overlapping a window",
                "parameters": [
                    {"name": "start", "in": "query", "type": "string"},
                    {"name": "end", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Event"}}},
                    "400": {"description": "Invalid window", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "post": {
                "tags": ["Events"],
                "summary": "Book a room",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/EventCreated"}},
                    "400": {"description": "Validation error, duplicate name or overlap", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Room not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "delete": {
                "tags": ["Events"],
                "summary": "Cancel an event by name",
                "parameters": [
                    {"name": "name", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Cancelled", "schema": {"$ref": "#/definitions/Event"}},
                    "404": {"description": "Event not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/events/active": {
            "get": {
                "tags": ["Events"],
                "summary": "Events running now",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Event"}}}
                }
            }
        },
        "/events/upcoming": {
            "get": {
                "tags": ["Events"],
                "summary": "Next events to start",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer", "default": 10}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Event"}}}
                }
            }
        },
        "/events/export": {
            "get": {
                "tags": ["Events"],
                "summary": "Download events as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "start", "in": "query", "type": "string"},
                    {"name": "end", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Attachment", "schema": {"type": "file"}},
                    "400": {"description": "Unsupported format or invalid window", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/events/room/{roomId}": {
            "get": {
                "tags": ["Events"],
                "summary": "Events booked in a room",
                "parameters": [
                    {"name": "roomId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Event"}}},
                    "404": {"description": "Room not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/events/availability/{roomId}": {
            "get": {
                "tags": ["Events"],
                "summary": "Check whether a room is free",
                "parameters": [
                    {"name": "roomId", "in": "path", "required": true, "type": "integer"},
                    {"name": "start", "in": "query", "required": true, "type": "string"},
                    {"name": "end", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Availability"}},
                    "400": {"description": "Invalid window", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Room not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/events/{id}": {
            "get": {
                "tags": ["Events"],
                "summary": "Get an event, null when absent",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Event"}}
                }
            },
            "patch": {
                "tags": ["Events"],
                "summary": "Partially update an event",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateEventRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/Event"}},
                    "400": {"description": "Validation error, duplicate name or overlap", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Event or room not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            },
            "delete": {
                "tags": ["Events"],
                "summary": "Delete an event",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/Event"}},
                    "404": {"description": "Event not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "Room": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"}
            }
        },
        "Event": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "roomId": {"type": "integer"},
                "startTime": {"type": "string", "format": "date-time"},
                "endTime": {"type": "string", "format": "date-time"},
                "room": {"$ref": "#/definitions/Room"}
            }
        },
        "EventCreated": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "roomId": {"type": "integer"},
                "startTime": {"type": "string", "format": "date-time"},
                "endTime": {"type": "string", "format": "date-time"},
                "room": {"$ref": "#/definitions/Room"},
                "message": {"type": "string"}
            }
        },
        "Availability": {
            "type": "object",
            "properties": {
                "room": {"$ref": "#/definitions/Room"},
                "requestedTimeRange": {
                    "type": "object",
                    "properties": {
                        "start": {"type": "string", "format": "date-time"},
                        "end": {"type": "string", "format": "date-time"}
                    }
                },
                "isAvailable": {"type": "boolean"},
                "conflictingEvents": {"type": "array", "items": {"$ref": "#/definitions/Event"}}
            }
        },
        "CreateRoomRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string", "maxLength": 255}
            }
        },
        "CreateEventRequest": {
            "type": "object",
            "required": ["name", "roomId", "startTime", "endTime"],
            "properties": {
                "name": {"type": "string", "maxLength": 255},
                "roomId": {"type": "integer", "minimum": 1},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"}
            }
        },
        "UpdateEventRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "maxLength": 255},
                "roomId": {"type": "integer", "minimum": 1},
                "startTime": {"type": "string"},
                "endTime": {"type": "string"}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "statusCode": {"type": "integer"},
                "code": {"type": "string"},
                "message": {"type": "string"},
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
