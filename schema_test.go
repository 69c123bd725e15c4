package tokens

import (
	"errors"
	"testing"

	"github.com/goliatone/go-tokens/layering"
)

func TestNewSchemaValidatesDescriptors(t *testing.T) {
	if _, err := NewSchema(FieldDescriptor{Path: "", Kind: layering.KindColor}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected empty path error, got %v", err)
	}
	if _, err := NewSchema(FieldDescriptor{Path: "size", Kind: layering.KindGroup}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected non-leaf kind error, got %v", err)
	}
	if _, err := NewSchema(
		FieldDescriptor{Path: "a", Kind: layering.KindColor},
		FieldDescriptor{Path: "a", Kind: layering.KindColor},
	); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected duplicate path error, got %v", err)
	}
	if _, err := NewSchema(
		FieldDescriptor{Path: "a", Kind: layering.KindColor},
		FieldDescriptor{Path: "a.b", Kind: layering.KindColor},
	); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected leaf/group conflict error, got %v", err)
	}
}

func TestSchemaOfAndCheck(t *testing.T) {
	schema := SchemaOf(buttonBase())
	if schema.Len() != 5 {
		t.Fatalf("expected 5 fields, got %d", schema.Len())
	}
	if kind, ok := schema.Kind("size.sm.primary.hover.transition"); !ok || kind != layering.KindDuration {
		t.Fatalf("expected duration field, got %s ok=%t", kind, ok)
	}
	if err := schema.Check(buttonBase()); err != nil {
		t.Fatalf("expected base to satisfy its own schema, got %v", err)
	}

	missing := buttonBase()
	delete(missing, "opacity")
	err := schema.Check(missing)
	var pathErr *layering.PathError
	if !errors.Is(err, ErrMissingLeaf) || !errors.As(err, &pathErr) || pathErr.Path != "opacity" {
		t.Fatalf("expected missing opacity, got %v", err)
	}

	extra := buttonBase()
	extra["radius"] = Dimension("4px")
	if err := schema.Check(extra); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected extra leaf mismatch, got %v", err)
	}

	wrongKind := buttonBase()
	wrongKind["opacity"] = Dimension("1px")
	if err := schema.Check(wrongKind); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected kind mismatch, got %v", err)
	}
}

func TestSchemaCheckFragment(t *testing.T) {
	schema := SchemaOf(buttonBase())
	if err := schema.CheckFragment(backgroundFragment("#000000")); err != nil {
		t.Fatalf("expected fragment to conform, got %v", err)
	}
	if err := schema.CheckFragment(Group{"radius": Dimension("4px")}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected undeclared leaf error, got %v", err)
	}
	if !(Schema{}).IsZero() || schema.IsZero() {
		t.Fatalf("unexpected IsZero results")
	}
}
