package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/jsonschema"
	"github.com/jacoelho/jsonschema/internal/value"
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdout, os.Stderr)
}

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("jsonlint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	schemaPath := fs.String("schema", "", "path to JSON Schema document")
	validateMeta := fs.Bool("validate-meta", false, "validate the schema itself against the Draft-7 meta-schema")
	var usageErr error
	fs.Usage = func() {
		usageErr = errors.Join(
			usageErr,
			writef(stderr, "Usage: %s --schema <schema.json> <document.json>\n\n", os.Args[0]),
			writeln(stderr, "Validates a JSON document against a JSON Schema Draft-7 document."),
			writeln(stderr),
			writeln(stderr, "Options:"),
		)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *schemaPath == "" {
		if err := writeln(stderr, "error: --schema is required"); err != nil {
			return 1
		}
		fs.Usage()
		return 2
	}

	remaining := fs.Args()
	if len(remaining) != 1 {
		if err := writeln(stderr, "error: exactly one JSON document argument is required"); err != nil {
			return 1
		}
		fs.Usage()
		return 2
	}
	docPath := remaining[0]

	schema, err := loadSchema(*schemaPath, *validateMeta)
	if err != nil {
		if writeErr := writef(stderr, "error loading schema: %v\n", err); writeErr != nil {
			return 1
		}
		return 1
	}
	if errs := schema.CompileErrors(); len(errs) > 0 {
		for _, e := range errs {
			if writeErr := writeln(stderr, e.Error()); writeErr != nil {
				return 1
			}
		}
		return 1
	}

	doc, err := loadValue(docPath)
	if err != nil {
		if writeErr := writef(stderr, "error loading document: %v\n", err); writeErr != nil {
			return 1
		}
		return 1
	}

	result := schema.Validate(doc)
	if !result.Valid() {
		for _, e := range result.Errors {
			if writeErr := writeln(stderr, e.Error()); writeErr != nil {
				return 1
			}
		}
		if writeErr := writef(stderr, "%s fails to validate\n", docPath); writeErr != nil {
			return 1
		}
		return 1
	}

	if err := writef(stdout, "%s validates\n", docPath); err != nil {
		return 1
	}
	return 0
}

func loadSchema(path string, validateMeta bool) (*jsonschema.Schema, error) {
	doc, err := loadValue(path)
	if err != nil {
		return nil, err
	}
	var opts []jsonschema.CompileOption
	if validateMeta {
		opts = append(opts, jsonschema.WithMetaValidation(true))
	}
	return jsonschema.CompileSchema(doc, opts...)
}

func loadValue(path string) (value.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return value.Value{}, fmt.Errorf("read %s: %w", path, err)
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return value.Value{}, fmt.Errorf("parse %s: %w", path, err)
	}
	v, err := value.FromAny(raw)
	if err != nil {
		return value.Value{}, fmt.Errorf("convert %s: %w", path, err)
	}
	return v, nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}
