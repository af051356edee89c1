package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Colegio API",
        "description": "Transactional operations layer for multi-site school management",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Auth", "description": "Login, token refresh, logout"},
        {"name": "Sites", "description": "School sites"},
        {"name": "Students", "description": "Student registry"},
        {"name": "Teachers", "description": "Teacher registry"},
        {"name": "Courses", "description": "Course catalog and teacher assignment"},
        {"name": "Classrooms", "description": "Classrooms and competency-weighted curriculum"},
        {"name": "Enrollments", "description": "Student-course enrollment"},
        {"name": "Evaluations", "description": "Evaluations and academic status"},
        {"name": "Payments", "description": "Payment plans, installments, debt ledger"},
        {"name": "Inventory", "description": "Inventory catalog and sales"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange a refresh token for a new token pair",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "courseId", "in": "query", "type": "string"},
                    {"name": "siteId", "in": "query", "type": "string"},
                    {"name": "period", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student on a course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "200": {"description": "Operation result", "schema": {"$ref": "#/definitions/OperationResult"}}
                }
            }
        },
        "/evaluations": {
            "post": {
                "tags": ["Evaluations"],
                "summary": "Record an evaluation and recompute academic status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordEvaluationRequest"}}
                ],
                "responses": {
                    "200": {"description": "Operation result", "schema": {"$ref": "#/definitions/OperationResult"}}
                }
            }
        },
        "/enrollments/{id}/status": {
            "get": {
                "tags": ["Evaluations"],
                "summary": "Get the derived academic status for an enrollment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/payments": {
            "post": {
                "tags": ["Payments"],
                "summary": "Process an installment payment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ProcessPaymentRequest"}}
                ],
                "responses": {
                    "200": {"description": "Operation result", "schema": {"$ref": "#/definitions/OperationResult"}}
                }
            }
        },
        "/payments/{id}/reverse": {
            "post": {
                "tags": ["Payments"],
                "summary": "Reverse a processed payment",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Operation result", "schema": {"$ref": "#/definitions/OperationResult"}}
                }
            }
        },
        "/students/{id}/debt": {
            "get": {
                "tags": ["Payments"],
                "summary": "Get a student's debt ledger",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/inventory/sell": {
            "post": {
                "tags": ["Inventory"],
                "summary": "Sell inventory to a student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SellRequest"}}
                ],
                "responses": {
                    "200": {"description": "Operation result", "schema": {"$ref": "#/definitions/OperationResult"}}
                }
            }
        },
        "/courses/{id}/teacher": {
            "put": {
                "tags": ["Courses"],
                "summary": "Assign or clear the teacher for a course",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignTeacherRequest"}}
                ],
                "responses": {
                    "200": {"description": "Operation result", "schema": {"$ref": "#/definitions/OperationResult"}}
                }
            }
        },
        "/classrooms/{id}/courses": {
            "post": {
                "tags": ["Classrooms"],
                "summary": "Assign a course with a competency weight",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignCourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "Operation result", "schema": {"$ref": "#/definitions/OperationResult"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RefreshRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "EnrollRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "course_id": {"type": "string"},
                "site_id": {"type": "string"},
                "period": {"type": "string"}
            },
            "required": ["student_id", "course_id", "site_id", "period"]
        },
        "RecordEvaluationRequest": {
            "type": "object",
            "properties": {
                "enrollment_id": {"type": "string"},
                "type": {"type": "string"},
                "score": {"type": "number"},
                "weight": {"type": "number"}
            },
            "required": ["enrollment_id", "type", "weight"]
        },
        "ProcessPaymentRequest": {
            "type": "object",
            "properties": {
                "installment_id": {"type": "string"},
                "method": {"type": "string", "enum": ["CASH", "CARD", "TRANSFER"]}
            },
            "required": ["installment_id", "method"]
        },
        "SellRequest": {
            "type": "object",
            "properties": {
                "item_id": {"type": "string"},
                "student_id": {"type": "string"},
                "quantity": {"type": "integer"}
            },
            "required": ["item_id", "student_id", "quantity"]
        },
        "AssignTeacherRequest": {
            "type": "object",
            "properties": {
                "teacher_id": {"type": "string", "x-nullable": true}
            }
        },
        "AssignCourseRequest": {
            "type": "object",
            "properties": {
                "course_id": {"type": "string"},
                "weight": {"type": "number"}
            },
            "required": ["course_id", "weight"]
        },
        "OperationResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"type": "object"}
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
