package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const configFileEnv = "CONFIG_FILE"

var durationType = reflect.TypeOf(time.Duration(0))

// LoadConfig fills target from the YAML file named by CONFIG_FILE (optional) and then
// applies environment overrides. Keys come from `env:"KEY"` tags or are derived from the
// field path (PARENT_CHILD); `env:"-"` skips a field. Durations use time.ParseDuration
// syntax and string slices are comma separated.
func LoadConfig(target interface{}) error {
	root, err := structPointer(target)
	if err != nil {
		return err
	}

	if path := os.Getenv(configFileEnv); path != "" {
		if err := LoadFile(path, target); err != nil {
			return err
		}
	}

	env := envLoader{lookup: os.LookupEnv}
	return env.fill(root, "")
}

// LoadFile decodes a single YAML file into target without touching the environment.
func LoadFile(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read file: %w", err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("config: decode yaml %s: %w", path, err)
	}
	return nil
}

func structPointer(target interface{}) (reflect.Value, error) {
	if target == nil {
		return reflect.Value{}, errors.New("config: target is nil")
	}
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, errors.New("config: target must be pointer to struct")
	}
	return v.Elem(), nil
}

type envLoader struct {
	lookup func(key string) (string, bool)
}

func (l envLoader) fill(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field, meta := v.Field(i), t.Field(i)
		if !field.CanSet() {
			continue
		}
		if meta.Anonymous {
			if err := l.fill(field, prefix); err != nil {
				return err
			}
			continue
		}

		key, ok := envKey(meta, prefix)
		if !ok {
			continue
		}
		if field.Kind() == reflect.Struct && field.Type() != durationType {
			if err := l.fill(field, key); err != nil {
				return err
			}
			continue
		}

		raw, found := l.lookup(key)
		if !found {
			continue
		}
		if err := setValue(field, raw); err != nil {
			return fmt.Errorf("config: parse %s: %w", key, err)
		}
	}
	return nil
}

// envKey is the variable name for a field, or false when the field opts out.
func envKey(meta reflect.StructField, prefix string) (string, bool) {
	tag := meta.Tag.Get("env")
	switch {
	case tag == "-":
		return "", false
	case tag != "":
		return upperSnake(tag), true
	case prefix == "":
		return upperSnake(meta.Name), true
	default:
		return prefix + "_" + upperSnake(meta.Name), true
	}
}

func upperSnake(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, "-", "_"))
}

func setValue(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch kind := field.Kind(); {
	case kind == reflect.String:
		field.SetString(raw)
	case kind == reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		field.SetBool(b)
	case kind >= reflect.Int && kind <= reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(n)
	case kind >= reflect.Uint && kind <= reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(n)
	case kind == reflect.Float32 || kind == reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case kind == reflect.Slice && field.Type().Elem().Kind() == reflect.String:
		items := splitList(raw)
		out := reflect.MakeSlice(field.Type(), len(items), len(items))
		for i, item := range items {
			out.Index(i).SetString(item)
		}
		field.Set(out)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}

func splitList(raw string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}
