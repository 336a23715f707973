package database

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/weiawesome/wes-idgen/pkg/idgen"
)

const idCallbackName = "idgen:assign_primary_key"

// UseIDGenerator registers a create callback that fills zero-valued primary
// keys from gen before the row is inserted. Integer keys need a generator
// with decimal output (snowflake); string keys accept any kind.
func UseIDGenerator(db *gorm.DB, gen idgen.Generator) error {
	return db.Callback().Create().Before("gorm:create").Register(idCallbackName, assignPrimaryKeys(gen))
}

func assignPrimaryKeys(gen idgen.Generator) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		if tx.Error != nil || tx.Statement.Schema == nil {
			return
		}
		field := tx.Statement.Schema.PrioritizedPrimaryField
		if field == nil {
			return
		}

		ctx := tx.Statement.Context
		rv := tx.Statement.ReflectValue
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			for i := 0; i < rv.Len(); i++ {
				if err := assignIfZero(ctx, gen, field, rv.Index(i)); err != nil {
					tx.AddError(err)
					return
				}
			}
		case reflect.Struct:
			if err := assignIfZero(ctx, gen, field, rv); err != nil {
				tx.AddError(err)
			}
		}
	}
}

func assignIfZero(ctx context.Context, gen idgen.Generator, field *schema.Field, rv reflect.Value) error {
	if _, zero := field.ValueOf(ctx, rv); !zero {
		return nil
	}

	id, err := gen.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate primary key for %s: %w", field.Name, err)
	}

	switch field.FieldType.Kind() {
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64:
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return fmt.Errorf("%s produced non-integer id %q for %s", gen, id, field.Name)
		}
		return field.Set(ctx, rv, n)
	case reflect.String:
		return field.Set(ctx, rv, id)
	default:
		return fmt.Errorf("unsupported primary key type %s for %s", field.FieldType, field.Name)
	}
}
