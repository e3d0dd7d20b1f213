/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package reflect

import (
	"reflect"
	"strconv"
	"strings"
)

// QualifiedName renders t with full package paths instead of package
// names, so that the result identifies the type without reflect.Type
// equality. Generic instantiation arguments are kept as reflect prints them.
func QualifiedName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	writeQualified(&b, t)
	return b.String()
}

func writeQualified(b *strings.Builder, t reflect.Type) {
	if t.Name() != "" {
		if p := t.PkgPath(); p != "" {
			b.WriteString(p)
			b.WriteByte('.')
		}
		b.WriteString(t.Name())
		return
	}
	switch t.Kind() {
	case reflect.Pointer:
		b.WriteByte('*')
		writeQualified(b, t.Elem())
	case reflect.Slice:
		b.WriteString("[]")
		writeQualified(b, t.Elem())
	case reflect.Array:
		b.WriteByte('[')
		b.WriteString(strconv.Itoa(t.Len()))
		b.WriteByte(']')
		writeQualified(b, t.Elem())
	case reflect.Map:
		b.WriteString("map[")
		writeQualified(b, t.Key())
		b.WriteByte(']')
		writeQualified(b, t.Elem())
	case reflect.Chan:
		switch t.ChanDir() {
		case reflect.RecvDir:
			b.WriteString("<-chan ")
		case reflect.SendDir:
			b.WriteString("chan<- ")
		default:
			b.WriteString("chan ")
		}
		writeQualified(b, t.Elem())
	default:
		// func, interface and anonymous struct literals
		b.WriteString(t.String())
	}
}
