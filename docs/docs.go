// Package docs holds the Swagger description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{.Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": [
        "http"
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Health check",
                "description": "Check if server is running",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Readiness check",
                "description": "Check the remote store, cache and local fallback store",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "Not ready"
                    }
                }
            }
        },
        "/auth/signup": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Sign up",
                "description": "Create an account and return an access token",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "email": {
                                    "type": "string"
                                },
                                "password": {
                                    "type": "string"
                                },
                                "display_name": {
                                    "type": "string"
                                }
                            },
                            "required": [
                                "email",
                                "password"
                            ]
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created"
                    },
                    "409": {
                        "description": "Email already registered"
                    }
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Log in",
                "description": "Log in with email and password",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "email": {
                                    "type": "string"
                                },
                                "password": {
                                    "type": "string"
                                }
                            },
                            "required": [
                                "email",
                                "password"
                            ]
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Login successful"
                    },
                    "401": {
                        "description": "Invalid credentials"
                    }
                }
            }
        },
        "/auth/signout": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Sign out",
                "description": "Clear the user's cached views and sync state",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Current user",
                "description": "Return the signed-in user",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/snapshot": {
            "get": {
                "tags": [
                    "Snapshot"
                ],
                "summary": "Get snapshot",
                "description": "Notes, future tasks, payroll history and work tracking in one view. Served from cache while fresh.",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "query",
                        "name": "refresh",
                        "type": "boolean",
                        "description": "Bypass the cache"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "503": {
                        "description": "Every read failed"
                    }
                }
            }
        },
        "/notes": {
            "get": {
                "tags": [
                    "Notes"
                ],
                "summary": "List notes",
                "description": "List notes, optionally for one day",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "query",
                        "name": "date",
                        "type": "string",
                        "description": "Calendar day, YYYY-MM-DD"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "post": {
                "tags": [
                    "Notes"
                ],
                "summary": "Create note",
                "description": "Create a note or attendance mark",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "date": {
                                    "type": "string"
                                },
                                "text": {
                                    "type": "string"
                                },
                                "type": {
                                    "type": "string"
                                },
                                "color": {
                                    "type": "string"
                                },
                                "timestamp": {
                                    "type": "string"
                                }
                            },
                            "required": [
                                "date",
                                "text"
                            ]
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Saved"
                    },
                    "202": {
                        "description": "Remote write failed; payload kept in the local fallback store"
                    },
                    "400": {
                        "description": "Invalid input"
                    }
                }
            }
        },
        "/notes/{id}": {
            "patch": {
                "tags": [
                    "Notes"
                ],
                "summary": "Update note",
                "description": "Merge the given fields into the note",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "text": {
                                    "type": "string"
                                },
                                "color": {
                                    "type": "string"
                                },
                                "completed": {
                                    "type": "boolean"
                                },
                                "progress": {
                                    "type": "integer"
                                },
                                "status": {
                                    "type": "string"
                                }
                            }
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Saved"
                    },
                    "202": {
                        "description": "Remote write failed; payload kept in the local fallback store"
                    },
                    "400": {
                        "description": "Invalid input"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            },
            "delete": {
                "tags": [
                    "Notes"
                ],
                "summary": "Delete note",
                "description": "Delete a note",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Saved"
                    },
                    "202": {
                        "description": "Remote write failed; payload kept in the local fallback store"
                    },
                    "400": {
                        "description": "Invalid input"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            }
        },
        "/future-tasks": {
            "get": {
                "tags": [
                    "Future Tasks"
                ],
                "summary": "List future tasks",
                "description": "List future tasks; a date-scoped list falls back to locally stored tasks when the remote store is unreachable",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "query",
                        "name": "date",
                        "type": "string",
                        "description": "Calendar day, YYYY-MM-DD"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "post": {
                "tags": [
                    "Future Tasks"
                ],
                "summary": "Create future task",
                "description": "Plan a task for a future day",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "date": {
                                    "type": "string"
                                },
                                "text": {
                                    "type": "string"
                                },
                                "priority": {
                                    "type": "string"
                                },
                                "status": {
                                    "type": "string"
                                },
                                "tags": {
                                    "type": "array"
                                }
                            },
                            "required": [
                                "date",
                                "text"
                            ]
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Saved"
                    },
                    "202": {
                        "description": "Remote write failed; payload kept in the local fallback store"
                    },
                    "400": {
                        "description": "Invalid input"
                    }
                }
            }
        },
        "/future-tasks/{id}": {
            "patch": {
                "tags": [
                    "Future Tasks"
                ],
                "summary": "Update future task",
                "description": "Merge the given fields into the task",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Saved"
                    },
                    "202": {
                        "description": "Remote write failed; payload kept in the local fallback store"
                    },
                    "400": {
                        "description": "Invalid input"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            },
            "delete": {
                "tags": [
                    "Future Tasks"
                ],
                "summary": "Delete future task",
                "description": "Delete a future task",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "id",
                        "type": "string",
                        "required": true
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Saved"
                    },
                    "202": {
                        "description": "Remote write failed; payload kept in the local fallback store"
                    },
                    "400": {
                        "description": "Invalid input"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            }
        },
        "/work/status": {
            "get": {
                "tags": [
                    "Work"
                ],
                "summary": "Work status",
                "description": "Attendance days in the current payroll cycle",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/work/payroll": {
            "get": {
                "tags": [
                    "Work"
                ],
                "summary": "Payroll history",
                "description": "List confirmed payrolls",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            },
            "post": {
                "tags": [
                    "Work"
                ],
                "summary": "Confirm payroll",
                "description": "Record a payout and start a new cycle",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "amount": {
                                    "type": "number"
                                },
                                "date": {
                                    "type": "string"
                                }
                            },
                            "required": [
                                "amount"
                            ]
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Saved"
                    },
                    "202": {
                        "description": "Kept in the local fallback store"
                    },
                    "422": {
                        "description": "Threshold not reached"
                    }
                }
            }
        },
        "/special-days": {
            "get": {
                "tags": [
                    "Work"
                ],
                "summary": "List special days",
                "description": "List holidays and other marked days",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/special-days/{date}": {
            "put": {
                "tags": [
                    "Work"
                ],
                "summary": "Mark special day",
                "description": "Mark or re-mark a day",
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "date",
                        "type": "string",
                        "required": true,
                        "description": "YYYY-MM-DD"
                    },
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "type": "object",
                            "properties": {
                                "type": {
                                    "type": "string"
                                }
                            },
                            "required": [
                                "type"
                            ]
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Saved"
                    },
                    "202": {
                        "description": "Remote write failed; payload kept in the local fallback store"
                    },
                    "400": {
                        "description": "Invalid input"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            },
            "delete": {
                "tags": [
                    "Work"
                ],
                "summary": "Unmark special day",
                "description": "Remove a day marker",
                "produces": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "date",
                        "type": "string",
                        "required": true,
                        "description": "YYYY-MM-DD"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Saved"
                    },
                    "202": {
                        "description": "Remote write failed; payload kept in the local fallback store"
                    },
                    "400": {
                        "description": "Invalid input"
                    },
                    "404": {
                        "description": "Not found"
                    }
                }
            }
        },
        "/sync": {
            "get": {
                "tags": [
                    "Sync"
                ],
                "summary": "Sync state",
                "description": "Status, last save time and last error of the user's writes",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/sync/reset": {
            "post": {
                "tags": [
                    "Sync"
                ],
                "summary": "Reset sync state",
                "description": "Return a saved or error status to idle",
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type 'Bearer' followed by a space and JWT token"
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "Daybook API",
	Description:      "Notes, attendance and payroll tracking with offline-tolerant sync",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
