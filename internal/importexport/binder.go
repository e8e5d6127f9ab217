package importexport

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"gorm.io/gorm/schema"

	"github.com/tphakala/gear-tracker/internal/datastore/entities"
)

// fieldKind is the CSV encoding class of an entity field.
type fieldKind int

const (
	kindString fieldKind = iota
	kindOptionalString
	kindInt
	kindOptionalInt
	kindOptionalFloat
	kindBool
	kindDate
)

var epochTimeType = reflect.TypeFor[entities.EpochTime]()

type boundField struct {
	index []int
	kind  fieldKind
}

// binder maps CSV columns onto entity struct fields using their gorm column tags.
type binder struct {
	fields map[string]boundField
}

var binders sync.Map // reflect.Type -> *binder

func binderFor(model any) *binder {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if b, ok := binders.Load(t); ok {
		return b.(*binder)
	}
	b := &binder{fields: make(map[string]boundField)}
	for i := range t.NumField() {
		f := t.Field(i)
		column := schema.ParseTagSetting(f.Tag.Get("gorm"), ";")["COLUMN"]
		if column == "" {
			continue
		}
		b.fields[column] = boundField{index: f.Index, kind: classify(f.Type)}
	}
	actual, _ := binders.LoadOrStore(t, b)
	return actual.(*binder)
}

func classify(t reflect.Type) fieldKind {
	if t == epochTimeType {
		return kindDate
	}
	switch t.Kind() {
	case reflect.Bool:
		return kindBool
	case reflect.Int, reflect.Int64:
		return kindInt
	case reflect.Pointer:
		switch t.Elem().Kind() {
		case reflect.Int, reflect.Int64:
			return kindOptionalInt
		case reflect.Float64:
			return kindOptionalFloat
		default:
			return kindOptionalString
		}
	default:
		return kindString
	}
}

func (b *binder) kind(column string) (fieldKind, bool) {
	f, ok := b.fields[column]
	return f.kind, ok
}

// get formats a column of entity for export.
func (b *binder) get(entity any, column string) string {
	f, ok := b.fields[column]
	if !ok {
		return ""
	}
	v := reflect.ValueOf(entity).Elem().FieldByIndex(f.index)
	switch f.kind {
	case kindDate:
		return v.Interface().(entities.EpochTime).DateString()
	case kindBool:
		if v.Bool() {
			return "1"
		}
		return "0"
	case kindInt:
		return strconv.FormatInt(v.Int(), 10)
	case kindOptionalInt:
		if v.IsNil() {
			return ""
		}
		return strconv.FormatInt(v.Elem().Int(), 10)
	case kindOptionalFloat:
		if v.IsNil() {
			return ""
		}
		return strconv.FormatFloat(v.Elem().Float(), 'f', -1, 64)
	case kindOptionalString:
		if v.IsNil() {
			return ""
		}
		return v.Elem().String()
	default:
		return v.String()
	}
}

// set parses raw into a column of entity. Empty cells reset optional fields to nil.
func (b *binder) set(entity any, column, raw string) error {
	f, ok := b.fields[column]
	if !ok {
		return nil
	}
	v := reflect.ValueOf(entity).Elem().FieldByIndex(f.index)
	raw = strings.TrimSpace(raw)

	switch f.kind {
	case kindDate:
		var t entities.EpochTime
		if raw != "" {
			parsed, err := entities.ParseDate(raw)
			if err != nil {
				return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
			}
			t = parsed
		}
		v.Set(reflect.ValueOf(t))
	case kindBool:
		parsed, err := parseBool(raw)
		if err != nil {
			return err
		}
		v.SetBool(parsed)
	case kindInt:
		if raw == "" {
			v.SetInt(0)
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q", raw)
		}
		v.SetInt(n)
	case kindOptionalInt:
		if raw == "" {
			v.SetZero()
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q", raw)
		}
		p := reflect.New(v.Type().Elem())
		p.Elem().SetInt(n)
		v.Set(p)
	case kindOptionalFloat:
		if raw == "" {
			v.SetZero()
			return nil
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", raw)
		}
		p := reflect.New(v.Type().Elem())
		p.Elem().SetFloat(n)
		v.Set(p)
	case kindOptionalString:
		if raw == "" {
			v.SetZero()
			return nil
		}
		p := reflect.New(v.Type().Elem())
		p.Elem().SetString(raw)
		v.Set(p)
	default:
		v.SetString(raw)
	}
	return nil
}

// parseBool accepts TRUE/FALSE and 1/0 in any case. Empty is false.
func parseBool(raw string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "TRUE", "1":
		return true, nil
	case "FALSE", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q, expected TRUE, FALSE, 1 or 0", raw)
	}
}
