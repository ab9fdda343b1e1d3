package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "FETS Operations Console API",
        "description": "Exam center operations console: sessions, candidates, rostering, requests, checklists, incidents and the staff wall",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and password management"},
        {"name": "Users", "description": "Account administration"},
        {"name": "Staff", "description": "Staff profiles and availability"},
        {"name": "Sessions", "description": "Exam sessions and daily capacity"},
        {"name": "Candidates", "description": "Candidate check-in tracking and bulk import"},
        {"name": "Roster", "description": "Monthly shift grid with versioned edits"},
        {"name": "Requests", "description": "Leave and shift swap workflow"},
        {"name": "Checklists", "description": "Pre and post exam checklist templates and instances"},
        {"name": "Incidents", "description": "Operational incident log"},
        {"name": "Wall", "description": "Staff social wall"},
        {"name": "Dashboard", "description": "Daily operations summary"},
        {"name": "Exports", "description": "Background roster exports"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "Tokens issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/sessions": {
            "get": {
                "tags": ["Sessions"],
                "summary": "List exam sessions",
                "responses": {
                    "200": {"description": "OK"}
                }
            },
            "post": {
                "tags": ["Sessions"],
                "summary": "Schedule a session",
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Capacity exceeded"}
                }
            }
        },
        "/candidates/import": {
            "post": {
                "tags": ["Candidates"],
                "summary": "Bulk import candidates from CSV",
                "responses": {
                    "200": {"description": "Import summary with per-row errors"}
                }
            }
        },
        "/roster": {
            "get": {
                "tags": ["Roster"],
                "summary": "Monthly roster grid",
                "responses": {
                    "200": {"description": "Grid with active version"}
                }
            }
        },
        "/roster/quick-add": {
            "post": {
                "tags": ["Roster"],
                "summary": "Fill the month with default shifts",
                "responses": {
                    "200": {"description": "Inserted and skipped counts"}
                }
            }
        },
        "/requests/{id}/approve": {
            "post": {
                "tags": ["Requests"],
                "summary": "Approve a pending request",
                "responses": {
                    "200": {"description": "Approved and applied to roster"},
                    "409": {"description": "Already decided"}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Daily operations summary",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a roster export",
                "responses": {
                    "202": {"description": "Job queued"}
                }
            }
        }
    },
    "definitions": {
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
