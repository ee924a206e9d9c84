// Package swagger serves the static OpenAPI document for the /docs endpoint.
package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "UniPlan Timetable API",
        "description": "Timetable allocation, conflict detection and proposal approval service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Slots", "description": "Institutional slot catalog"},
        {"name": "Allocations", "description": "Timetable allocations and the validate-then-create protocol"},
        {"name": "Conflicts", "description": "Conflict detection and resolution feasibility"},
        {"name": "Proposals", "description": "Proposal lifecycle and approvals"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and obtain an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Return the authenticated user's claims",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/slots": {
            "get": {
                "tags": ["Slots"],
                "summary": "List catalog slots ordered by shift and start time",
                "parameters": [
                    {"name": "groupBy", "in": "query", "type": "string", "description": "Set to shift to group slots per shift"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/allocations": {
            "get": {
                "tags": ["Allocations"],
                "summary": "List allocations",
                "parameters": [
                    {"name": "periodId", "in": "query", "type": "string"},
                    {"name": "proposalId", "in": "query", "type": "string"},
                    {"name": "sectionId", "in": "query", "type": "string"},
                    {"name": "professorId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Allocations"],
                "summary": "Create an allocation after re-validating it",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAllocationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Allocation conflicts with the current timetable"}
                }
            }
        },
        "/allocations/validate": {
            "post": {
                "tags": ["Allocations"],
                "summary": "Validate a candidate allocation without persisting it",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAllocationRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/allocations/grid": {
            "get": {
                "tags": ["Allocations"],
                "summary": "Position allocations on the weekday and slot grid",
                "parameters": [
                    {"name": "periodId", "in": "query", "type": "string"},
                    {"name": "proposalId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/allocations/{id}": {
            "delete": {
                "tags": ["Allocations"],
                "summary": "Remove an allocation",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/conflicts": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "Detect conflicts in the scoped allocation set",
                "parameters": [
                    {"name": "periodId", "in": "query", "type": "string"},
                    {"name": "proposalId", "in": "query", "type": "string"},
                    {"name": "severity", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "allocationId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/stats": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "Aggregate conflict counts by type and severity",
                "parameters": [
                    {"name": "periodId", "in": "query", "type": "string"},
                    {"name": "proposalId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/{id}/resolution/validate": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Check whether a resolution strategy can clear a conflict",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "periodId", "in": "query", "type": "string"},
                    {"name": "proposalId", "in": "query", "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ValidateResolutionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/proposals": {
            "get": {
                "tags": ["Proposals"],
                "summary": "List proposals visible to the caller",
                "parameters": [
                    {"name": "periodId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Proposals"],
                "summary": "Open a new draft proposal",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateProposalRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/proposals/{id}": {
            "get": {
                "tags": ["Proposals"],
                "summary": "Get a proposal with the caller's action permissions",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/proposals/{id}/grid": {
            "get": {
                "tags": ["Proposals"],
                "summary": "Position the proposal's allocations on the timetable grid",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/proposals/{id}/export.pdf": {
            "get": {
                "tags": ["Proposals"],
                "summary": "Download the proposal timetable as a PDF grid",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        },
        "/proposals/{id}/export.csv": {
            "get": {
                "tags": ["Proposals"],
                "summary": "Download the proposal's allocations as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "CSV document"}
                }
            }
        },
        "/proposals/{id}/submit": {
            "post": {
                "tags": ["Proposals"],
                "summary": "Submit a draft for approval",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/SubmitProposalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Illegal transition"},
                    "412": {"description": "Proposal has no allocations"}
                }
            }
        },
        "/proposals/{id}/approve": {
            "post": {
                "tags": ["Proposals"],
                "summary": "Approve a pending proposal",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/ApproveProposalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Illegal transition"}
                }
            }
        },
        "/proposals/{id}/reject": {
            "post": {
                "tags": ["Proposals"],
                "summary": "Reject a pending proposal with a justification",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectProposalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing or out-of-bounds justification"},
                    "409": {"description": "Illegal transition"}
                }
            }
        },
        "/proposals/{id}/reopen": {
            "post": {
                "tags": ["Proposals"],
                "summary": "Return a rejected proposal to draft",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "schema": {"$ref": "#/definitions/ReopenProposalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Illegal transition"}
                }
            }
        },
        "/proposals/{id}/send-back": {
            "post": {
                "tags": ["Proposals"],
                "summary": "Return an approved proposal to draft with a mandatory reason",
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SendBackProposalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Missing or out-of-bounds reason"},
                    "409": {"description": "Illegal transition"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "CreateAllocationRequest": {
            "type": "object",
            "required": ["section_id", "weekday", "start", "end"],
            "properties": {
                "section_id": {"type": "string"},
                "weekday": {"type": "string", "example": "MONDAY"},
                "start": {"type": "string", "example": "07:30"},
                "end": {"type": "string", "example": "08:20"},
                "proposal_id": {"type": "string"}
            }
        },
        "CreateProposalRequest": {
            "type": "object",
            "required": ["course_id", "course_name", "period_id"],
            "properties": {
                "course_id": {"type": "string"},
                "course_name": {"type": "string"},
                "period_id": {"type": "string"}
            }
        },
        "SubmitProposalRequest": {
            "type": "object",
            "properties": {
                "notes": {"type": "string"}
            }
        },
        "ApproveProposalRequest": {
            "type": "object",
            "properties": {
                "notes": {"type": "string"}
            }
        },
        "RejectProposalRequest": {
            "type": "object",
            "required": ["justification"],
            "properties": {
                "justification": {"type": "string", "minLength": 10, "maxLength": 2000},
                "notes": {"type": "string"}
            }
        },
        "ReopenProposalRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string", "minLength": 10, "maxLength": 500}
            }
        },
        "SendBackProposalRequest": {
            "type": "object",
            "required": ["reason"],
            "properties": {
                "reason": {"type": "string", "minLength": 10, "maxLength": 500}
            }
        },
        "ValidateResolutionRequest": {
            "type": "object",
            "required": ["strategy"],
            "properties": {
                "strategy": {"type": "string", "example": "MOVE_TO_FREE_SLOT"}
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
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
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
