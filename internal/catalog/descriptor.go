package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Descriptor is the static configuration of one catalog table.
// It maps 1:1 to a REST resource path segment under /parametros/catalogos.
type Descriptor struct {
	Table   string `yaml:"table" json:"table"`
	Label   string `yaml:"label" json:"label"`
	IDField string `yaml:"id_field,omitempty" json:"id_field,omitempty"`

	// HiddenFields are always excluded from create/edit forms, in addition
	// to the resolved identifier.
	HiddenFields []string `yaml:"hidden_fields,omitempty" json:"hidden_fields,omitempty"`

	// DeclaredFields is the fallback column list, used only while the
	// table has no records to infer structure from.
	DeclaredFields []string `yaml:"declared_fields,omitempty" json:"declared_fields,omitempty"`
}

// Hidden returns the hidden-field set, keys lowercased.
func (d Descriptor) Hidden() map[string]bool {
	out := make(map[string]bool, len(d.HiddenFields))
	for _, f := range d.HiddenFields {
		out[strings.ToLower(strings.TrimSpace(f))] = true
	}
	return out
}

// Defaults is the compiled-in set of stock catalogs. A YAML file in the
// catalogs directory with the same table name overrides the whole entry.
func Defaults() []Descriptor {
	return []Descriptor{
		{Table: "unidades_medida", Label: "Unidades de medida", DeclaredFields: []string{"id_unidad", "nombre", "abreviatura"}},
		{Table: "marcas", Label: "Marcas", DeclaredFields: []string{"id_marca", "nombre"}},
		{Table: "categorias_insumo", Label: "Categorías de insumo", DeclaredFields: []string{"id_categoria", "nombre", "descripcion"}},
		{Table: "tipos_movimiento", Label: "Tipos de movimiento", DeclaredFields: []string{"id_tipo_movimiento", "nombre", "afecta_stock"}},
		{Table: "monedas", Label: "Monedas", DeclaredFields: []string{"id_moneda", "nombre", "simbolo", "codigo_iso"}},
		{Table: "impuestos", Label: "Impuestos", DeclaredFields: []string{"id_impuesto", "nombre", "porcentaje"}},
		{Table: "metodos_pago", Label: "Métodos de pago", DeclaredFields: []string{"id_metodo_pago", "nombre", "requiere_referencia"}},
		{Table: "tipos_documento", Label: "Tipos de documento", DeclaredFields: []string{"id_tipo_documento", "nombre", "abreviatura"}},
		{Table: "estados_pedido", Label: "Estados de pedido", DeclaredFields: []string{"id_estado", "nombre", "orden"}},
		{Table: "areas_preparacion", Label: "Áreas de preparación", DeclaredFields: []string{"id_area", "nombre"}},
		{Table: "tipos_menu", Label: "Tipos de menú", DeclaredFields: []string{"id_tipo_menu", "nombre", "descripcion"}},
		{Table: "tamanos_porcion", Label: "Tamaños de porción", DeclaredFields: []string{"id_tamano", "nombre", "factor"}},
		{Table: "dias_semana", Label: "Días de la semana", DeclaredFields: []string{"id_dia", "nombre", "orden"}},
		{Table: "turnos", Label: "Turnos", DeclaredFields: []string{"id_turno", "nombre", "hora_inicio", "hora_fin"}},
		{Table: "tipos_contrato", Label: "Tipos de contrato", DeclaredFields: []string{"id_tipo_contrato", "nombre"}},
		{Table: "puestos", Label: "Puestos", DeclaredFields: []string{"id_puesto", "nombre", "descripcion"}},
		{Table: "bancos", Label: "Bancos", DeclaredFields: []string{"id_banco", "nombre", "codigo"}},
		{Table: "tipos_gasto", Label: "Tipos de gasto", DeclaredFields: []string{"id_tipo_gasto", "nombre", "deducible"}},
	}
}

// Registry holds the descriptors of every known catalog, keyed by table name.
type Registry struct {
	byTable map[string]Descriptor
}

func NewRegistry(descs []Descriptor) *Registry {
	r := &Registry{byTable: make(map[string]Descriptor, len(descs))}
	for _, d := range descs {
		if d.Table == "" {
			continue
		}
		r.byTable[d.Table] = d
	}
	return r
}

func (r *Registry) Get(table string) (Descriptor, bool) {
	d, ok := r.byTable[table]
	return d, ok
}

// Tables returns the known table names sorted by label for display.
func (r *Registry) Tables() []Descriptor {
	out := make([]Descriptor, 0, len(r.byTable))
	for _, d := range r.byTable {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// LoadRegistry builds a registry from the compiled-in defaults plus any
// *.yaml descriptor files found in dir. dir may be empty or missing.
func LoadRegistry(dir string) (*Registry, error) {
	reg := NewRegistry(Defaults())
	if strings.TrimSpace(dir) == "" {
		return reg, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return reg, nil
		}
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var d Descriptor
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		// table name from the file if the descriptor omits it
		if d.Table == "" {
			d.Table = strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		}
		if d.Label == "" {
			d.Label = d.Table
		}
		reg.byTable[d.Table] = d
	}
	return reg, nil
}
