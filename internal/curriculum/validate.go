package curriculum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// SupportedMajor is the document major version this build understands.
const SupportedMajor = "v1"

const documentSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "chapters"],
  "additionalProperties": false,
  "properties": {
    "version": {"type": "string"},
    "pass_mark": {"type": "integer", "minimum": 1, "maximum": 100},
    "chapters": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["number", "title", "lessons"],
        "additionalProperties": false,
        "properties": {
          "number": {"type": "integer", "minimum": 1},
          "title": {"type": "string", "minLength": 1},
          "cumulative": {"type": "boolean"},
          "lessons": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["number", "title"],
              "additionalProperties": false,
              "properties": {
                "number": {"type": "integer", "minimum": 1},
                "title": {"type": "string", "minLength": 1},
                "question_count": {"type": "integer", "minimum": 1},
                "complexity": {"type": "integer", "minimum": 1, "maximum": 5},
                "review": {"type": "boolean"}
              }
            }
          }
        }
      }
    }
  }
}`

const (
	defaultPassMark      = 70
	defaultQuestionCount = 5
	schemaURL            = "pytutor://curriculum.schema.json"
)

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func documentValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse document schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add document schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Parse decodes and validates a YAML curriculum document.
func Parse(data []byte) (*Curriculum, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	// Round-trip through JSON so the validator sees JSON numbers and
	// string-keyed objects.
	asJSON, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize document: %w", err)
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(asJSON))
	if err != nil {
		return nil, fmt.Errorf("normalize document: %w", err)
	}

	validator, err := documentValidator()
	if err != nil {
		return nil, err
	}
	if err := validator.Validate(inst); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var c Curriculum
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode curriculum: %w", err)
	}
	applyDefaults(&c)

	if err := validate(&c); err != nil {
		return nil, err
	}
	c.index()
	return &c, nil
}

func applyDefaults(c *Curriculum) {
	if c.PassMark == 0 {
		c.PassMark = defaultPassMark
	}
	for i := range c.Chapters {
		for j := range c.Chapters[i].Lessons {
			l := &c.Chapters[i].Lessons[j]
			if l.QuestionCount == 0 {
				l.QuestionCount = defaultQuestionCount
			}
			if l.Complexity == 0 {
				l.Complexity = 1
			}
		}
	}
}

// validate performs the structural checks the schema cannot express.
// Returns a combined error describing all problems found, or nil if valid.
func validate(c *Curriculum) error {
	var errs []string

	if !semver.IsValid(c.Version) {
		errs = append(errs, fmt.Sprintf("version %q is not a semantic version", c.Version))
	} else if major := semver.Major(c.Version); major != SupportedMajor {
		errs = append(errs, fmt.Sprintf("version %s is not supported (want %s.x.x)", c.Version, SupportedMajor))
	}

	chapters := make(map[int]bool, len(c.Chapters))
	cumulative := 0
	for _, ch := range c.Chapters {
		if chapters[ch.Number] {
			errs = append(errs, fmt.Sprintf("duplicate chapter %d", ch.Number))
		}
		chapters[ch.Number] = true
		if ch.Cumulative {
			cumulative++
		}

		lessons := make(map[int]bool, len(ch.Lessons))
		reviews := 0
		for _, l := range ch.Lessons {
			if lessons[l.Number] {
				errs = append(errs, fmt.Sprintf("chapter %d: duplicate lesson %d", ch.Number, l.Number))
			}
			lessons[l.Number] = true
			if l.Review {
				reviews++
			}
		}
		if reviews > 1 {
			errs = append(errs, fmt.Sprintf("chapter %d: %d review lessons, want at most 1", ch.Number, reviews))
		}
	}
	if cumulative > 1 {
		errs = append(errs, fmt.Sprintf("%d cumulative chapters, want at most 1", cumulative))
	}

	if len(errs) > 0 {
		return fmt.Errorf("curriculum validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
