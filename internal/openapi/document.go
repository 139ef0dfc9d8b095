package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
)

const securityScheme = "apiKey"

// Document builds the OpenAPI description of the inventory API.
func Document(serverURL string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "Mock Inventory API",
			Description: "Paginated, filterable product listings behind time-bound API keys.",
			Version:     "1.0.0",
		},
		Servers: openapi3.Servers{
			{URL: serverURL},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes[securityScheme] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type: "apiKey",
			In:   "header",
			Name: "x-api-key",
		},
	}
	doc.Security = openapi3.SecurityRequirements{
		{securityScheme: {}},
	}

	doc.Components.Schemas["ErrorResponse"] = objectSchema(openapi3.Schemas{
		"message": stringSchema(),
		"details": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}}},
	}, "message")

	doc.Components.Schemas["Product"] = objectSchema(openapi3.Schemas{
		"id":          integerSchema(),
		"title":       stringSchema(),
		"price":       &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"number"}, Format: "double", Min: openapi3.Float64Ptr(0)}},
		"description": stringSchema(),
		"category":    stringSchema(),
		"images": &openapi3.SchemaRef{Value: &openapi3.Schema{
			Type:  &openapi3.Types{"array"},
			Items: stringSchema(),
		}},
		"createdAt": dateTimeSchema(),
		"updatedAt": dateTimeSchema(),
	}, "id", "title", "price", "description", "category", "images", "createdAt", "updatedAt")

	doc.Components.Schemas["Pagination"] = objectSchema(openapi3.Schemas{
		"total":      integerSchema(),
		"limit":      integerSchema(),
		"offset":     integerSchema(),
		"totalPages": integerSchema(),
	}, "total", "limit", "offset", "totalPages")

	doc.Components.Schemas["ProductPage"] = objectSchema(openapi3.Schemas{
		"products": &openapi3.SchemaRef{Value: &openapi3.Schema{
			Type:  &openapi3.Types{"array"},
			Items: ref("Product"),
		}},
		"pagination": ref("Pagination"),
	}, "products", "pagination")

	doc.Paths = openapi3.NewPaths()
	addAuthPaths(doc)
	addProductPaths(doc)
	addAdminPaths(doc)
	addHealthPaths(doc)

	return doc
}

func addAuthPaths(doc *openapi3.T) {
	generate := &openapi3.Operation{
		Tags:        []string{"auth"},
		Summary:     "Issue an API key",
		OperationID: "generateKey",
		Security:    &openapi3.SecurityRequirements{},
		RequestBody: jsonBody(objectSchema(openapi3.Schemas{
			"expiresIn": &openapi3.SchemaRef{Value: &openapi3.Schema{
				Type:        &openapi3.Types{"string"},
				Pattern:     `^(\d+)([hdw])$`,
				Default:     "1d",
				Description: "Lifetime such as 1h, 7d or 2w.",
			}},
			"masterKey": stringSchema(),
		}, "masterKey")),
		Responses: newResponses("200", "Key issued", objectSchema(openapi3.Schemas{
			"apiKey":    stringSchema(),
			"expiresAt": dateTimeSchema(),
		}, "apiKey", "expiresAt"), "400", "403", "500"),
	}
	doc.Paths.Set("/api/auth/generate-key", &openapi3.PathItem{Post: generate})

	revoke := &openapi3.Operation{
		Tags:        []string{"auth"},
		Summary:     "Revoke an API key",
		OperationID: "revokeKey",
		Security:    &openapi3.SecurityRequirements{},
		RequestBody: jsonBody(objectSchema(openapi3.Schemas{
			"apiKey":    stringSchema(),
			"masterKey": stringSchema(),
		}, "apiKey", "masterKey")),
		Responses: newResponses("200", "Key revoked", messageSchema(), "400", "403", "500"),
	}
	doc.Paths.Set("/api/auth/revoke-key", &openapi3.PathItem{Post: revoke})
}

func addProductPaths(doc *openapi3.T) {
	list := &openapi3.Operation{
		Tags:        []string{"products"},
		Summary:     "List products",
		Description: "Filters by category, price range and search text, then sorts and paginates.",
		OperationID: "listProducts",
		Parameters:  listQueryParameters(),
		Responses:   newResponses("200", "A page of products", ref("ProductPage"), "401"),
	}
	doc.Paths.Set("/api/products", &openapi3.PathItem{Get: list})

	get := &openapi3.Operation{
		Tags:        []string{"products"},
		Summary:     "Get a product by id",
		OperationID: "getProduct",
		Parameters: openapi3.Parameters{
			&openapi3.ParameterRef{
				Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewIntegerSchema()),
			},
		},
		Responses: newResponses("200", "The product", ref("Product"), "401", "404"),
	}
	doc.Paths.Set("/api/products/{id}", &openapi3.PathItem{Get: get})

	categories := &openapi3.Operation{
		Tags:        []string{"products"},
		Summary:     "List distinct categories",
		OperationID: "listCategories",
		Responses: newResponses("200", "Sorted category names", &openapi3.SchemaRef{Value: &openapi3.Schema{
			Type:  &openapi3.Types{"array"},
			Items: stringSchema(),
		}}, "401"),
	}
	doc.Paths.Set("/api/categories", &openapi3.PathItem{Get: categories})
}

func addAdminPaths(doc *openapi3.T) {
	regenerate := &openapi3.Operation{
		Tags:        []string{"admin"},
		Summary:     "Replace the catalog with generated products",
		OperationID: "regenerateProducts",
		RequestBody: jsonBody(objectSchema(openapi3.Schemas{
			"count": &openapi3.SchemaRef{Value: &openapi3.Schema{
				Type:    &openapi3.Types{"integer"},
				Min:     openapi3.Float64Ptr(1),
				Default: 100,
			}},
			"masterKey": stringSchema(),
		}, "masterKey")),
		Responses: newResponses("200", "Catalog regenerated", objectSchema(openapi3.Schemas{
			"message": stringSchema(),
			"count":   integerSchema(),
		}, "message", "count"), "400", "401", "403", "500"),
	}
	doc.Paths.Set("/api/admin/regenerate-products", &openapi3.PathItem{Post: regenerate})
}

func addHealthPaths(doc *openapi3.T) {
	status := objectSchema(openapi3.Schemas{"status": stringSchema()}, "status")
	for path, summary := range map[string]string{
		"/health": "Liveness probe",
		"/ready":  "Readiness probe, checks storage",
	} {
		doc.Paths.Set(path, &openapi3.PathItem{Get: &openapi3.Operation{
			Tags:        []string{"health"},
			Summary:     summary,
			OperationID: "probe" + path[1:],
			Security:    &openapi3.SecurityRequirements{},
			Responses:   newResponses("200", summary, status),
		}})
	}
}

func listQueryParameters() openapi3.Parameters {
	param := func(name, description string, schema *openapi3.Schema) *openapi3.ParameterRef {
		return &openapi3.ParameterRef{
			Value: openapi3.NewQueryParameter(name).
				WithDescription(description).
				WithSchema(schema),
		}
	}
	return openapi3.Parameters{
		param("limit", "Page size, default 10.", openapi3.NewIntegerSchema()),
		param("offset", "Number of products to skip, default 0.", openapi3.NewIntegerSchema()),
		param("sort", "Sort key: id, price or title.", openapi3.NewStringSchema().WithEnum("id", "price", "title")),
		param("order", "asc or desc.", openapi3.NewStringSchema().WithEnum("asc", "desc")),
		param("category", "Comma-separated exact category names.", openapi3.NewStringSchema()),
		param("minPrice", "Inclusive lower price bound.", openapi3.NewFloat64Schema()),
		param("maxPrice", "Inclusive upper price bound.", openapi3.NewFloat64Schema()),
		param("search", "Case-insensitive substring of title or description.", openapi3.NewStringSchema()),
	}
}

func newResponses(statusCode, description string, schema *openapi3.SchemaRef, errorCodes ...string) *openapi3.Responses {
	responses := openapi3.NewResponses()

	successDesc := description
	responses.Set(statusCode, &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &successDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	})

	errorRef := ref("ErrorResponse")
	for _, code := range errorCodes {
		desc := errorDescriptions[code]
		responses.Set(code, &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &desc,
				Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
			},
		})
	}
	return responses
}

var errorDescriptions = map[string]string{
	"400": "Bad request",
	"401": "Missing, invalid or expired API key",
	"403": "Invalid master key",
	"404": "Not found",
	"500": "Internal server error",
}

func jsonBody(schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Required: true,
			Content:  openapi3.NewContentWithJSONSchemaRef(schema),
		},
	}
}

func objectSchema(props openapi3.Schemas, required ...string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{
		Type:       &openapi3.Types{"object"},
		Properties: props,
		Required:   required,
	}}
}

func messageSchema() *openapi3.SchemaRef {
	return objectSchema(openapi3.Schemas{"message": stringSchema()}, "message")
}

func ref(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

func stringSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: openapi3.NewStringSchema()}
}

func integerSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: openapi3.NewIntegerSchema()}
}

func dateTimeSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: openapi3.NewDateTimeSchema()}
}
