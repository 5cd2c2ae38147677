// Package docs holds the Swagger 2.0 document served at /swagger. It is maintained by hand
// alongside the @-annotations on cmd/api/main.go and the controllers.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/classes": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["classes"],
                "summary": "List classes",
                "responses": {
                    "200": {"description": "Classes in numeric order", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/classes/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["classes"],
                "summary": "Get class details",
                "parameters": [
                    {"type": "integer", "format": "int64", "minimum": 1, "description": "Class ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Class retrieved", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "Class not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/classes/{id}/occupancy": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Read-only. Shown to the operator before a promotion; the promotion itself never checks vacancy.",
                "produces": ["application/json"],
                "tags": ["classes"],
                "summary": "Check whether a class/section is vacant",
                "parameters": [
                    {"type": "integer", "format": "int64", "minimum": 1, "description": "Class ID", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "description": "Section ID (required when the class has sections)", "name": "section_id", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Occupancy", "schema": {"allOf": [{"$ref": "#/definitions/dto.APIResponse"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/models.Occupancy"}}}]}},
                    "400": {"description": "Section missing or not part of the class", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Class not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/students": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Lists Active students, optionally narrowed to a class, a section or a name/admission number search.",
                "produces": ["application/json"],
                "tags": ["students"],
                "summary": "List students",
                "parameters": [
                    {"type": "integer", "description": "Class ID", "name": "class_id", "in": "query"},
                    {"type": "integer", "description": "Section ID", "name": "section_id", "in": "query"},
                    {"type": "string", "description": "Name, admission number or attendance ID fragment", "name": "search", "in": "query"},
                    {"type": "integer", "default": 1, "description": "Page number (1-based)", "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "description": "Page size", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Students retrieved", "schema": {"$ref": "#/definitions/dto.StudentListResponse"}},
                    "400": {"description": "Invalid query parameters", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Creates a student record. Name and age are derived from the name parts and date of birth.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["students"],
                "summary": "Admit a student",
                "parameters": [
                    {"description": "Student information", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Student created", "schema": {"allOf": [{"$ref": "#/definitions/dto.APIResponse"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/models.Student"}}}]}},
                    "400": {"description": "Invalid request data", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Class not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Admission number already exists", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/students/bin": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["students"],
                "summary": "List the recycle bin",
                "parameters": [
                    {"type": "integer", "default": 1, "description": "Page number (1-based)", "name": "page", "in": "query"},
                    {"type": "integer", "default": 20, "description": "Page size", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Binned students", "schema": {"$ref": "#/definitions/dto.StudentListResponse"}}
                }
            }
        },
        "/students/bulk/delete": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["students"],
                "summary": "Move several students to the bin",
                "parameters": [
                    {"description": "Student IDs", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.StudentIDsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-student outcome", "schema": {"$ref": "#/definitions/dto.BulkResult"}},
                    "400": {"description": "Invalid request data", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/students/bulk/permanent": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["students"],
                "summary": "Permanently delete several binned students",
                "parameters": [
                    {"description": "Student IDs", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.StudentIDsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-student outcome", "schema": {"$ref": "#/definitions/dto.BulkResult"}},
                    "400": {"description": "Invalid request data", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/students/bulk/restore": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["students"],
                "summary": "Restore several students",
                "parameters": [
                    {"description": "Student IDs", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.StudentIDsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-student outcome", "schema": {"$ref": "#/definitions/dto.BulkResult"}},
                    "400": {"description": "Invalid request data", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/students/promote": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Validates the request as a whole, then promotes each student independently.\nStudents that cannot be promoted are listed in errors; the others are promoted.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["promotions"],
                "summary": "Promote students",
                "parameters": [
                    {"description": "Promotion request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.PromoteRequest"}}
                ],
                "responses": {
                    "200": {"description": "Batch outcome", "schema": {"$ref": "#/definitions/dto.PromoteResponse"}},
                    "400": {"description": "Request rejected, nothing was promoted", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "401": {"description": "Unauthorized - Invalid or missing token", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/students/roll-numbers": {
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Gives the Active students of a class (or section) roll numbers 1..n in name order. All or nothing.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["promotions"],
                "summary": "Reassign roll numbers",
                "parameters": [
                    {"description": "Scope", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.RollNumberRequest"}}
                ],
                "responses": {
                    "200": {"description": "New roll numbers", "schema": {"allOf": [{"$ref": "#/definitions/dto.APIResponse"}, {"type": "object", "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/models.RollAssignment"}}}}]}},
                    "400": {"description": "Invalid scope", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Class not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Storage failure, nothing was changed", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["students"],
                "summary": "Get student details",
                "parameters": [
                    {"type": "integer", "format": "int64", "minimum": 1, "description": "Student ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Student retrieved", "schema": {"allOf": [{"$ref": "#/definitions/dto.APIResponse"}, {"type": "object", "properties": {"data": {"$ref": "#/definitions/models.Student"}}}]}},
                    "400": {"description": "Invalid student ID", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Student not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["students"],
                "summary": "Move a student to the bin",
                "parameters": [
                    {"type": "integer", "format": "int64", "minimum": 1, "description": "Student ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Student moved to bin", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "Student not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Student is already in the bin", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/students/{id}/permanent": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "description": "Fails with 409 when attendance, marks, fees or promotion history still reference the student.",
                "produces": ["application/json"],
                "tags": ["students"],
                "summary": "Permanently delete a binned student",
                "parameters": [
                    {"type": "integer", "format": "int64", "minimum": 1, "description": "Student ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Student permanently deleted", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "Student not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Student is active, or still referenced (details carry table and constraint)", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/students/{id}/promotions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["promotions"],
                "summary": "Promotion history of a student",
                "parameters": [
                    {"type": "integer", "format": "int64", "minimum": 1, "description": "Student ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Promotion records, oldest first", "schema": {"allOf": [{"$ref": "#/definitions/dto.APIResponse"}, {"type": "object", "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/models.PromotionRecord"}}}}]}},
                    "404": {"description": "Student not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/students/{id}/restore": {
            "put": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["students"],
                "summary": "Restore a student from the bin",
                "parameters": [
                    {"type": "integer", "format": "int64", "minimum": 1, "description": "Student ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Student restored", "schema": {"$ref": "#/definitions/dto.APIResponse"}},
                    "404": {"description": "Student not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Student is not in the bin, or its roll number was taken", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"$ref": "#/definitions/dto.ErrorDetail"},
                "message": {"type": "string", "example": "Operation completed successfully"},
                "success": {"type": "boolean", "example": true},
                "timestamp": {"type": "string", "example": "2025-04-23T12:01:05.123Z"}
            }
        },
        "dto.BulkFailure": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"},
                "student_id": {"type": "integer"}
            }
        },
        "dto.BulkResult": {
            "type": "object",
            "properties": {
                "failed": {"type": "array", "items": {"$ref": "#/definitions/dto.BulkFailure"}},
                "succeeded": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "dto.CreateStudentRequest": {
            "type": "object",
            "required": ["academic_year", "admission_number", "attendance_id", "class_id", "first_name"],
            "properties": {
                "academic_year": {"type": "string"},
                "address": {"type": "string"},
                "admission_date": {"type": "string"},
                "admission_number": {"type": "string"},
                "attendance_id": {"type": "string"},
                "class_id": {"type": "integer"},
                "contact_number": {"type": "string"},
                "date_of_birth": {"type": "string"},
                "email": {"type": "string"},
                "father_name": {"type": "string"},
                "first_name": {"type": "string"},
                "gender": {"type": "string", "enum": ["MALE", "FEMALE", "OTHER"]},
                "last_name": {"type": "string"},
                "middle_name": {"type": "string"},
                "mother_name": {"type": "string"},
                "section_id": {"type": "integer"}
            }
        },
        "dto.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "VAL_001"},
                "details": {},
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/dto.ErrorDetail"},
                "message": {"type": "string"},
                "success": {"type": "boolean", "example": false},
                "timestamp": {"type": "string"}
            }
        },
        "dto.PaginationInfo": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer", "example": 20},
                "page": {"type": "integer", "example": 1},
                "total": {"type": "integer", "example": 42},
                "total_pages": {"type": "integer", "example": 3}
            }
        },
        "dto.PromoteRequest": {
            "type": "object",
            "properties": {
                "notes": {"type": "string", "maxLength": 1000},
                "student_ids": {"type": "array", "items": {"type": "integer"}},
                "to_academic_year": {"type": "string", "example": "2025-2026"},
                "to_class_id": {"type": "integer"},
                "to_section_id": {"type": "integer"}
            }
        },
        "dto.PromoteResponse": {
            "type": "object",
            "properties": {
                "batch_id": {"type": "string"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/models.PromotionFailure"}},
                "message": {"type": "string", "example": "Promoted 3 of 3 students."},
                "promoted_count": {"type": "integer"}
            }
        },
        "dto.RollNumberRequest": {
            "type": "object",
            "required": ["class_id"],
            "properties": {
                "class_id": {"type": "integer"},
                "section_id": {"type": "integer"}
            }
        },
        "dto.StudentIDsRequest": {
            "type": "object",
            "required": ["student_ids"],
            "properties": {
                "student_ids": {"type": "array", "minItems": 1, "items": {"type": "integer"}}
            }
        },
        "dto.StudentListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/models.Student"}},
                "pagination": {"$ref": "#/definitions/dto.PaginationInfo"},
                "success": {"type": "boolean", "example": true}
            }
        },
        "models.Occupancy": {
            "type": "object",
            "properties": {
                "class_id": {"type": "integer"},
                "count": {"type": "integer"},
                "section_id": {"type": "integer"},
                "vacant": {"type": "boolean"}
            }
        },
        "models.PromotionFailure": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"},
                "student_id": {"type": "integer"}
            }
        },
        "models.PromotionRecord": {
            "type": "object",
            "properties": {
                "actor": {"type": "string"},
                "batch_id": {"type": "string"},
                "from_academic_year": {"type": "string"},
                "from_class_id": {"type": "integer"},
                "from_section_id": {"type": "integer"},
                "id": {"type": "integer"},
                "notes": {"type": "string"},
                "promoted_at": {"type": "string"},
                "student_id": {"type": "integer"},
                "to_academic_year": {"type": "string"},
                "to_class_id": {"type": "integer"},
                "to_section_id": {"type": "integer"}
            }
        },
        "models.RollAssignment": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "roll_number": {"type": "integer"},
                "student_id": {"type": "integer"}
            }
        },
        "models.Student": {
            "type": "object",
            "properties": {
                "academic_year": {"type": "string"},
                "address": {"type": "string"},
                "admission_date": {"type": "string"},
                "admission_number": {"type": "string"},
                "age": {"type": "integer"},
                "attendance_id": {"type": "string"},
                "class_id": {"type": "integer"},
                "contact_number": {"type": "string"},
                "created_at": {"type": "string"},
                "date_of_birth": {"type": "string"},
                "deleted_at": {"type": "string"},
                "email": {"type": "string"},
                "father_name": {"type": "string"},
                "first_name": {"type": "string"},
                "gender": {"type": "string"},
                "id": {"type": "integer"},
                "last_name": {"type": "string"},
                "middle_name": {"type": "string"},
                "mother_name": {"type": "string"},
                "name": {"type": "string"},
                "roll_number": {"type": "integer"},
                "section_id": {"type": "integer"},
                "status": {"type": "string", "enum": ["ACTIVE", "DELETED"]},
                "updated_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "JWT token for authorization",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "SchoolHub Student Lifecycle API",
	Description:      "Promotion, roll numbering, vacancy and recycle-bin operations for the school student roster",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
