package config

import (
	"reflect"
	"strings"
)

// keySet maps the underscore form of every config key to its dotted viper
// key, so SOLRKIT_ADAPTER_CONNECTION_TIMEOUT resolves to
// adapter.connection_timeout rather than adapter.connection.timeout.
type keySet struct {
	leaves map[string]string
	maps   map[string]*mapKeys
}

// mapKeys describes a map-valued field; its entries are addressed by key.
type mapKeys struct {
	dotted string
	// elem holds the entry's own keys, nil for scalar values.
	elem map[string]string
}

func newKeySet(cfg any, fileKeys []string) *keySet {
	ks := &keySet{leaves: make(map[string]string), maps: make(map[string]*mapKeys)}
	ks.collect(reflect.TypeOf(cfg), "")
	for _, k := range fileKeys {
		ks.leaves[strings.ReplaceAll(k, ".", "_")] = k
	}
	return ks
}

func (ks *keySet) collect(t reflect.Type, prefix string) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}
		if strings.Contains(opts, "squash") {
			ks.collect(f.Type, prefix)
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}

		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		switch ft.Kind() {
		case reflect.Struct:
			ks.collect(ft, key)
		case reflect.Map:
			mk := &mapKeys{dotted: key}
			if elem := indirect(ft.Elem()); elem.Kind() == reflect.Struct {
				sub := &keySet{leaves: make(map[string]string), maps: make(map[string]*mapKeys)}
				sub.collect(elem, "")
				mk.elem = sub.leaves
			}
			ks.maps[strings.ReplaceAll(key, ".", "_")] = mk
		case reflect.Func, reflect.Chan, reflect.Interface:
		default:
			ks.leaves[strings.ReplaceAll(key, ".", "_")] = key
		}
	}
}

// resolve returns the viper key of an env variable name (prefix stripped,
// lower case).
func (ks *keySet) resolve(env string) (string, bool) {
	if key, ok := ks.leaves[env]; ok {
		return key, true
	}
	for under, mk := range ks.maps {
		rest, ok := strings.CutPrefix(env, under+"_")
		if !ok || rest == "" {
			continue
		}
		if mk.elem == nil {
			return mk.dotted + "." + rest, true
		}
		// The longest matching field wins so the entry name stays shortest.
		best := ""
		for fieldUnder := range mk.elem {
			if strings.HasSuffix(rest, "_"+fieldUnder) && len(fieldUnder) > len(best) {
				best = fieldUnder
			}
		}
		if best != "" {
			entry := strings.TrimSuffix(rest, "_"+best)
			return mk.dotted + "." + entry + "." + mk.elem[best], true
		}
	}
	return "", false
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
