package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// ColumnKind is the type a mutable column's value is coerced to before binding.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindInt
	KindFloat
	KindBool
)

func (k ColumnKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	}
	return "unknown"
}

// Table describes one relation exposed through the admin table browser.
// SQL identifiers are taken from here and never from a request.
type Table struct {
	Name    string
	Key     string
	Columns []string
	Mutable map[string]ColumnKind
	// Insertable is nil for tables the browser cannot add rows to.
	Insertable map[string]ColumnKind
	Required   []string
}

// ColumnValue is one coerced assignment for an UPDATE or INSERT.
type ColumnValue struct {
	Column string
	Value  any
}

var catalogColumns = []string{"id", "nombre", "descripcion", "activo"}

var catalogMutable = map[string]ColumnKind{
	"nombre":      KindText,
	"descripcion": KindText,
	"activo":      KindBool,
}

func catalogTable(name string) *Table {
	return &Table{
		Name:       name,
		Key:        "id",
		Columns:    catalogColumns,
		Mutable:    catalogMutable,
		Insertable: catalogMutable,
		Required:   []string{"nombre"},
	}
}

var browsableTables = map[string]*Table{
	"usuario": {
		Name:    "usuario",
		Key:     "id",
		Columns: []string{"id", "correo", "nombre_completo", "tipo_usuario", "fecha_registro"},
		Mutable: map[string]ColumnKind{
			"correo":          KindText,
			"nombre_completo": KindText,
			"tipo_usuario":    KindText,
		},
	},
	"vivienda": {
		Name:    "vivienda",
		Key:     "id_vivienda",
		Columns: []string{"id_vivienda", "id_usuario", "region", "comuna", "cantidad_personas", "superficie_1", "superficie_2"},
		Mutable: map[string]ColumnKind{
			"region":            KindText,
			"comuna":            KindInt,
			"cantidad_personas": KindInt,
			"superficie_1":      KindFloat,
			"superficie_2":      KindFloat,
		},
	},
	"region": {
		Name:       "region",
		Key:        "id",
		Columns:    []string{"id", "nombre"},
		Mutable:    map[string]ColumnKind{"nombre": KindText},
		Insertable: map[string]ColumnKind{"nombre": KindText},
		Required:   []string{"nombre"},
	},
	"comuna": {
		Name:       "comuna",
		Key:        "id",
		Columns:    []string{"id", "nombre", "id_region"},
		Mutable:    map[string]ColumnKind{"nombre": KindText, "id_region": KindInt},
		Insertable: map[string]ColumnKind{"nombre": KindText, "id_region": KindInt},
		Required:   []string{"nombre", "id_region"},
	},
	"comentario": {
		Name:    "comentario",
		Key:     "id",
		Columns: []string{"id", "tipo", "descripcion", "id_usuario", "fecha"},
		Mutable: map[string]ColumnKind{"tipo": KindText, "descripcion": KindText},
	},
	"valoracion": {
		Name:    "valoracion",
		Key:     "id",
		Columns: []string{"id", "valor", "feedback", "id_usuario", "fecha"},
		Mutable: map[string]ColumnKind{"valor": KindInt, "feedback": KindText},
	},
	"combustible":      catalogTable("combustible"),
	"muro_solucion":    catalogTable("muro_solucion"),
	"techo_solucion":   catalogTable("techo_solucion"),
	"ventana_solucion": catalogTable("ventana_solucion"),
	"evaluacion_calefaccion": {
		Name: "evaluacion_calefaccion",
		Key:  "id",
		Columns: []string{
			"id", "id_usuario", "superficie_1", "superficie_2", "id_combustible", "consumo_anual",
			"eficiencia", "inversion", "ahorro_anual", "payback", "reduccion_co2", "fecha_creacion",
		},
	},
	"evaluacion_agua": {
		Name: "evaluacion_agua",
		Key:  "id",
		Columns: []string{
			"id", "id_usuario", "precio_agua", "consumo_agua_potable",
			"ahorro_m3_mes", "ahorro_dinero", "inversion", "retorno", "fecha_creacion",
		},
	},
}

// LookupTable returns the registry entry for name or ErrUnknownTable.
func LookupTable(name string) (*Table, error) {
	t, ok := browsableTables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return t, nil
}

// TableNames lists the browsable tables in a stable order.
func TableNames() []string {
	names := make([]string, 0, len(browsableTables))
	for n := range browsableTables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Coerce checks every key of a decoded JSON body against the mutable allow-list
// and converts its value to the declared kind. The result is sorted by column
// so generated statements are deterministic. Bodies are expected to be decoded
// with json.Decoder.UseNumber; plain float64 numbers are accepted too.
func (t *Table) Coerce(body map[string]any) ([]ColumnValue, error) {
	return coerceAll(t.Mutable, body)
}

// CoerceInsert is Coerce against the insertable columns. Every required
// column must be present and non-null.
func (t *Table) CoerceInsert(body map[string]any) ([]ColumnValue, error) {
	if t.Insertable == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotInsertable, t.Name)
	}
	for _, c := range t.Required {
		if body[c] == nil {
			return nil, Invalid(c, "is required")
		}
	}
	return coerceAll(t.Insertable, body)
}

func coerceAll(allowed map[string]ColumnKind, body map[string]any) ([]ColumnValue, error) {
	if len(body) == 0 {
		return nil, ErrNothingToWrite
	}

	cols := make([]string, 0, len(body))
	for c := range body {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	out := make([]ColumnValue, 0, len(cols))
	for _, c := range cols {
		kind, ok := allowed[c]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, c)
		}
		v, err := coerce(c, kind, body[c])
		if err != nil {
			return nil, err
		}
		out = append(out, ColumnValue{Column: c, Value: v})
	}
	return out, nil
}

func coerce(col string, kind ColumnKind, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch kind {
	case KindText:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	case KindInt:
		switch n := raw.(type) {
		case json.Number:
			if i, err := n.Int64(); err == nil {
				return i, nil
			}
		case float64:
			// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
			if n == math.Trunc(n) && n >= math.MinInt64 && n < math.MaxInt64 {
				return int64(n), nil
			}
		}
	case KindFloat:
		switch n := raw.(type) {
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f, nil
			}
		case float64:
			return n, nil
		}
	case KindBool:
		if b, ok := raw.(bool); ok {
			return b, nil
		}
	}
	return nil, Invalid(col, "must be "+kind.String())
}
