package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dafibh/giderler/giderler-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

const (
	mimeJSON      = "application/json"
	mimeMultipart = "multipart/form-data"
)

// OpenAPI3Spec is the OpenAPI 3.0 document served at /openapi.json
type OpenAPI3Spec struct {
	OpenAPI    string                 `json:"openapi"`
	Info       map[string]interface{} `json:"info"`
	Servers    []Server               `json:"servers"`
	Paths      map[string]interface{} `json:"paths"`
	Components map[string]interface{} `json:"components,omitempty"`
}

// Server represents an OpenAPI 3.0 server
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

// transformRefs rewrites every #/definitions/ reference to
// #/components/schemas/ and turns Swagger "file" schemas into binary strings.
func transformRefs(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		if v["type"] == "file" {
			return map[string]interface{}{"type": "string", "format": "binary"}
		}
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if ref, ok := value.(string); ok && key == "$ref" {
				result[key] = strings.Replace(ref, "#/definitions/", "#/components/schemas/", 1)
				continue
			}
			result[key] = transformRefs(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = transformRefs(item)
		}
		return result
	default:
		return data
	}
}

// transformParameter converts a Swagger 2.0 query or path parameter, moving
// its type fields under schema.
func transformParameter(param map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, field := range []string{"name", "in", "description", "required"} {
		if val, ok := param[field]; ok {
			result[field] = val
		}
	}

	schema := make(map[string]interface{})
	for _, field := range []string{"type", "format", "enum", "default", "minimum", "maximum", "items"} {
		if val, ok := param[field]; ok {
			schema[field] = transformRefs(val)
		}
	}
	if len(schema) > 0 {
		result["schema"] = schema
	}
	return result
}

// expenseRequestBody builds the requestBody of an operation from its body
// and formData parameters. Create and update accept the JSON payload, or the
// same fields as multipart form values next to the receipt file.
func expenseRequestBody(consumes []string, body map[string]interface{}, files []map[string]interface{}) map[string]interface{} {
	if body == nil && len(files) == 0 {
		return nil
	}

	content := make(map[string]interface{})
	var payload interface{}
	if body != nil {
		payload = transformRefs(body["schema"])
	}

	for _, mediaType := range consumes {
		switch mediaType {
		case mimeJSON:
			if payload != nil {
				content[mimeJSON] = map[string]interface{}{"schema": payload}
			}
		case mimeMultipart:
			properties := make(map[string]interface{})
			for _, file := range files {
				properties[file["name"].(string)] = map[string]interface{}{
					"type":        "string",
					"format":      "binary",
					"description": file["description"],
				}
			}
			fileSchema := map[string]interface{}{"type": "object", "properties": properties}
			schema := fileSchema
			if payload != nil {
				schema = map[string]interface{}{"allOf": []interface{}{payload, fileSchema}}
			}
			content[mimeMultipart] = map[string]interface{}{"schema": schema}
		}
	}

	requestBody := map[string]interface{}{"content": content}
	if body != nil {
		requestBody["description"] = body["description"]
		requestBody["required"] = body["required"]
	}
	return requestBody
}

// transformResponses nests each response schema under the media types the
// operation produces.
func transformResponses(produces []string, responses map[string]interface{}) map[string]interface{} {
	if len(produces) == 0 {
		produces = []string{mimeJSON}
	}
	result := make(map[string]interface{}, len(responses))
	for status, raw := range responses {
		response, _ := raw.(map[string]interface{})
		converted := map[string]interface{}{"description": response["description"]}
		if schema, ok := response["schema"]; ok {
			content := make(map[string]interface{}, len(produces))
			for _, mediaType := range produces {
				content[mediaType] = map[string]interface{}{"schema": transformRefs(schema)}
			}
			converted["content"] = content
		}
		result[status] = converted
	}
	return result
}

// transformOperation converts one Swagger 2.0 operation to OpenAPI 3.0
func transformOperation(op map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, field := range []string{"summary", "description", "tags", "operationId", "security"} {
		if val, ok := op[field]; ok {
			result[field] = val
		}
	}

	var (
		params []interface{}
		body   map[string]interface{}
		files  []map[string]interface{}
	)
	rawParams, _ := op["parameters"].([]interface{})
	for _, raw := range rawParams {
		param, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		switch param["in"] {
		case "body":
			body = param
		case "formData":
			files = append(files, param)
		default:
			params = append(params, transformParameter(param))
		}
	}
	if len(params) > 0 {
		result["parameters"] = params
	}
	if requestBody := expenseRequestBody(stringList(op["consumes"]), body, files); requestBody != nil {
		result["requestBody"] = requestBody
	}

	responses, _ := op["responses"].(map[string]interface{})
	result["responses"] = transformResponses(stringList(op["produces"]), responses)
	return result
}

func transformPaths(paths map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(paths))
	for path, raw := range paths {
		methods, _ := raw.(map[string]interface{})
		converted := make(map[string]interface{}, len(methods))
		for method, op := range methods {
			if operation, ok := op.(map[string]interface{}); ok {
				converted[method] = transformOperation(operation)
			}
		}
		result[path] = converted
	}
	return result
}

func stringList(v interface{}) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// ServeOpenAPI3Spec serves the expense API description as OpenAPI 3.0, with
// the requesting host as its server
func ServeOpenAPI3Spec(c echo.Context) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to read swagger doc"})
	}

	var swagger2 map[string]interface{}
	if err := json.Unmarshal([]byte(doc), &swagger2); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to parse swagger doc"})
	}

	info, _ := swagger2["info"].(map[string]interface{})
	paths, _ := swagger2["paths"].(map[string]interface{})

	components := make(map[string]interface{})
	if definitions, ok := swagger2["definitions"].(map[string]interface{}); ok {
		components["schemas"] = transformRefs(definitions)
	}

	return c.JSON(http.StatusOK, OpenAPI3Spec{
		OpenAPI: "3.0.3",
		Info:    info,
		Servers: []Server{{
			URL:         c.Scheme() + "://" + c.Request().Host + docs.SwaggerInfo.BasePath,
			Description: "Current host",
		}},
		Paths:      transformPaths(paths),
		Components: components,
	})
}
