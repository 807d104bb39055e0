package helpers

import (
	"mime/multipart"
	"sort"
	"strconv"
	"strings"
)

type formKey struct {
	key   string
	index int // -1 para "name" y "name[]"
}

// matchFormKeys devuelve las keys de m que corresponden a name: "name",
// "name[]" o "name[<n>]", sin distinguir mayúsculas. Orden: sin índice
// primero, luego por índice ascendente.
func matchFormKeys[T any](m map[string][]T, name string) []string {
	var keys []formKey
	for k := range m {
		base, idx, ok := splitFormKey(k)
		if !ok || !strings.EqualFold(base, name) {
			continue
		}
		keys = append(keys, formKey{key: k, index: idx})
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].index != keys[j].index {
			return keys[i].index < keys[j].index
		}
		return keys[i].key < keys[j].key
	})

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.key
	}
	return out
}

func splitFormKey(k string) (base string, index int, ok bool) {
	open := strings.IndexByte(k, '[')
	if open < 0 {
		return k, -1, true
	}
	if !strings.HasSuffix(k, "]") {
		return "", 0, false
	}
	inner := k[open+1 : len(k)-1]
	if inner == "" {
		return k[:open], -1, true
	}
	n, err := strconv.Atoi(inner)
	if err != nil || n < 0 {
		return "", 0, false
	}
	return k[:open], n, true
}

// FormValues junta los valores de todas las keys que matchean name.
func FormValues(form *multipart.Form, name string) []string {
	if form == nil {
		return nil
	}
	var out []string
	for _, k := range matchFormKeys(form.Value, name) {
		out = append(out, form.Value[k]...)
	}
	return out
}

// FormValue devuelve el primer valor de name o "".
func FormValue(form *multipart.Form, name string) string {
	if vs := FormValues(form, name); len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// FormFiles junta los archivos de todas las keys que matchean name.
func FormFiles(form *multipart.Form, name string) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	var out []*multipart.FileHeader
	for _, k := range matchFormKeys(form.File, name) {
		out = append(out, form.File[k]...)
	}
	return out
}
