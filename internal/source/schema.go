package source

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed posts_schema.json
var postsSchemaJSON string

var (
	compileOnce sync.Once
	postsSchema *jsonschema.Schema
	compileErr  error
)

// PostsSchema returns the compiled JSON Schema for embed-context post lists.
func PostsSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("posts_schema.json", strings.NewReader(postsSchemaJSON)); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, err := compiler.Compile("posts_schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile posts schema: %w", err)
			return
		}
		postsSchema = schema
	})
	return postsSchema, compileErr
}

// ValidatePostsDocument validates raw response bytes against the posts schema.
func ValidatePostsDocument(data []byte) error {
	schema, err := PostsSchema()
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("posts are not valid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("posts do not match schema: %w", err)
	}
	return nil
}
