package rest

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/ghodss/yaml"
	"github.com/go-chi/chi/v5"
)

// NewOpenAPI3 instantiates the OpenAPI specification for this service.
func NewOpenAPI3() openapi3.T {
	swagger := openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       "CourseFlow Board API",
			Description: "REST API for the CourseFlow kanban board engine",
			Version:     "0.1.0",
			Contact: &openapi3.Contact{
				URL: "https://github.com/courseflow/board",
			},
		},
		Servers: openapi3.Servers{
			&openapi3.Server{
				Description: "Local development",
				URL:         "http://0.0.0.0:9234",
			},
		},
	}

	swagger.Components.Schemas = openapi3.Schemas{
		"Task": openapi3.NewSchemaRef("",
			openapi3.NewObjectSchema().
				WithProperty("id", openapi3.NewUUIDSchema()).
				WithProperty("title", openapi3.NewStringSchema()).
				WithProperty("description", openapi3.NewStringSchema()).
				WithProperty("dueDate", openapi3.NewStringSchema().WithFormat("date-time")).
				WithProperty("status", openapi3.NewStringSchema().WithEnum("not_started", "in_progress", "done")).
				WithProperty("courseId", openapi3.NewUUIDSchema()).
				WithProperty("color", openapi3.NewStringSchema()).
				WithProperty("isUrgent", openapi3.NewBoolSchema()).
				WithProperty("movable", openapi3.NewBoolSchema())),
		"Course": openapi3.NewSchemaRef("",
			openapi3.NewObjectSchema().
				WithProperty("id", openapi3.NewUUIDSchema()).
				WithProperty("name", openapi3.NewStringSchema()).
				WithProperty("color", openapi3.NewStringSchema()).
				WithProperty("groupId", openapi3.NewUUIDSchema())),
		"Group": openapi3.NewSchemaRef("",
			openapi3.NewObjectSchema().
				WithProperty("id", openapi3.NewUUIDSchema()).
				WithProperty("name", openapi3.NewStringSchema())),
	}

	swagger.Components.RequestBodies = openapi3.RequestBodies{
		"CreateTaskRequest": &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request used for creating a task.").
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("title", openapi3.NewStringSchema().WithMinLength(1)).
					WithProperty("description", openapi3.NewStringSchema()).
					WithProperty("dueDate", openapi3.NewStringSchema().WithFormat("date-time")).
					WithProperty("courseId", openapi3.NewUUIDSchema())),
		},
		"EditTaskRequest": &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request used for replacing a task.").
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("title", openapi3.NewStringSchema().WithMinLength(1)).
					WithProperty("description", openapi3.NewStringSchema()).
					WithProperty("dueDate", openapi3.NewStringSchema().WithFormat("date-time")).
					WithProperty("status", openapi3.NewStringSchema().WithEnum("not_started", "in_progress", "done")).
					WithProperty("courseId", openapi3.NewUUIDSchema())),
		},
		"MoveTaskRequest": &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request used for moving a task between columns.").
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("status", openapi3.NewStringSchema().WithEnum("not_started", "in_progress", "done"))),
		},
	}

	swagger.Components.Responses = openapi3.Responses{
		"ErrorResponse": &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Response when an error happens.").
				WithContent(openapi3.NewContentWithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("error", openapi3.NewStringSchema()))),
		},
		"TaskResponse": &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Response returned back after creating or changing a task.").
				WithContent(openapi3.NewContentWithJSONSchema(openapi3.NewObjectSchema().
					WithPropertyRef("task", &openapi3.SchemaRef{Ref: "#/components/schemas/Task"}))),
		},
	}

	swagger.Paths = openapi3.Paths{
		"/board": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "GetBoard",
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().
							WithDescription("The filtered board view.").
							WithContent(openapi3.NewContentWithJSONSchema(openapi3.NewObjectSchema().
								WithPropertyRef("tasks", &openapi3.SchemaRef{
									Value: openapi3.NewArraySchema().WithItems(openapi3.NewSchema()),
								}).
								WithProperty("filter", openapi3.NewStringSchema()))),
					},
				},
			},
		},
		"/tasks": &openapi3.PathItem{
			Post: &openapi3.Operation{
				OperationID: "CreateTask",
				RequestBody: &openapi3.RequestBodyRef{
					Ref: "#/components/requestBodies/CreateTaskRequest",
				},
				Responses: openapi3.Responses{
					"201": &openapi3.ResponseRef{Ref: "#/components/responses/TaskResponse"},
					"400": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
					"500": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
		},
		"/tasks/{id}": &openapi3.PathItem{
			Put: &openapi3.Operation{
				OperationID: "EditTask",
				Parameters: openapi3.Parameters{
					&openapi3.ParameterRef{
						Value: openapi3.NewPathParameter("id").
							WithSchema(openapi3.NewUUIDSchema()),
					},
				},
				RequestBody: &openapi3.RequestBodyRef{
					Ref: "#/components/requestBodies/EditTaskRequest",
				},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/TaskResponse"},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
					"500": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
			Delete: &openapi3.Operation{
				OperationID: "DeleteTask",
				Parameters: openapi3.Parameters{
					&openapi3.ParameterRef{
						Value: openapi3.NewPathParameter("id").
							WithSchema(openapi3.NewUUIDSchema()),
					},
				},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{
						Value: openapi3.NewResponse().WithDescription("Task deleted."),
					},
					"500": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
		},
		"/tasks/{id}/move": &openapi3.PathItem{
			Post: &openapi3.Operation{
				OperationID: "MoveTask",
				Parameters: openapi3.Parameters{
					&openapi3.ParameterRef{
						Value: openapi3.NewPathParameter("id").
							WithSchema(openapi3.NewUUIDSchema()),
					},
				},
				RequestBody: &openapi3.RequestBodyRef{
					Ref: "#/components/requestBodies/MoveTaskRequest",
				},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/TaskResponse"},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
					"500": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
		},
	}

	return swagger
}

// RegisterOpenAPI serves the generated specification as JSON and YAML.
func RegisterOpenAPI(r chi.Router) {
	swagger := NewOpenAPI3()

	r.Get("/openapi3.json", func(w http.ResponseWriter, r *http.Request) {
		renderResponse(w, r, &swagger, http.StatusOK)
	})

	r.Get("/openapi3.yaml", func(w http.ResponseWriter, r *http.Request) {
		data, err := yaml.Marshal(&swagger)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/x-yaml")

		_, _ = w.Write(data)
	})
}
