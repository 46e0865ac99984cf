package postgres

import (
	"context"
	"fmt"
)

// Reference data. Communes are a subset per region; more can be added through
// the admin table browser.
var seedRegions = []struct {
	name     string
	communes []string
}{
	{"Arica y Parinacota", []string{"Arica", "Putre"}},
	{"Tarapacá", []string{"Iquique", "Alto Hospicio", "Pozo Almonte"}},
	{"Antofagasta", []string{"Antofagasta", "Calama", "Tocopilla"}},
	{"Atacama", []string{"Copiapó", "Vallenar", "Caldera"}},
	{"Coquimbo", []string{"La Serena", "Coquimbo", "Ovalle", "Illapel"}},
	{"Valparaíso", []string{"Valparaíso", "Viña del Mar", "Quilpué", "San Antonio", "Los Andes"}},
	{"Metropolitana de Santiago", []string{"Santiago", "Providencia", "Las Condes", "Maipú", "Puente Alto", "Ñuñoa"}},
	{"Libertador General Bernardo O'Higgins", []string{"Rancagua", "San Fernando", "Pichilemu", "Rengo"}},
	{"Maule", []string{"Talca", "Curicó", "Linares", "Constitución", "Cauquenes", "Molina", "San Clemente", "Maule"}},
	{"Ñuble", []string{"Chillán", "Chillán Viejo", "San Carlos", "Bulnes"}},
	{"Biobío", []string{"Concepción", "Talcahuano", "Los Ángeles", "Coronel", "San Pedro de la Paz"}},
	{"La Araucanía", []string{"Temuco", "Padre Las Casas", "Villarrica", "Angol", "Pucón"}},
	{"Los Ríos", []string{"Valdivia", "La Unión", "Panguipulli"}},
	{"Los Lagos", []string{"Puerto Montt", "Osorno", "Castro", "Puerto Varas", "Ancud"}},
	{"Aysén del General Carlos Ibáñez del Campo", []string{"Coyhaique", "Puerto Aysén"}},
	{"Magallanes y de la Antártica Chilena", []string{"Punta Arenas", "Puerto Natales", "Porvenir"}},
}

var seedCatalogs = map[string][]string{
	"combustible":      {"Leña", "Pellet", "Gas licuado", "Gas natural", "Parafina", "Electricidad"},
	"muro_solucion":    {"EIFS 50 mm", "Poliestireno expandido 50 mm", "Lana mineral 50 mm", "Lana de vidrio 80 mm"},
	"techo_solucion":   {"Lana de vidrio 100 mm", "Lana de vidrio 160 mm", "Poliuretano proyectado 50 mm"},
	"ventana_solucion": {"Termopanel DVH aluminio", "Termopanel DVH PVC", "Doble ventana"},
}

// catalog order is fixed so seeding is deterministic.
var seedCatalogOrder = []string{"combustible", "muro_solucion", "techo_solucion", "ventana_solucion"}

// Seed inserts the reference data. It is idempotent: existing rows are kept.
func Seed(ctx context.Context, db DB) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	for _, r := range seedRegions {
		if _, err = tx.Exec(ctx,
			`INSERT INTO region (nombre) VALUES ($1) ON CONFLICT (nombre) DO NOTHING`,
			r.name,
		); err != nil {
			return fmt.Errorf("seed region %q: %w", r.name, err)
		}
		for _, c := range r.communes {
			if _, err = tx.Exec(ctx, `
				INSERT INTO comuna (nombre, id_region)
				SELECT $1, id FROM region WHERE nombre = $2
				ON CONFLICT (id_region, nombre) DO NOTHING`,
				c, r.name,
			); err != nil {
				return fmt.Errorf("seed commune %q: %w", c, err)
			}
		}
	}

	for _, table := range seedCatalogOrder {
		for _, name := range seedCatalogs[table] {
			// table comes from the fixed list above.
			q := fmt.Sprintf(`INSERT INTO %s (nombre) VALUES ($1) ON CONFLICT (nombre) DO NOTHING`, table)
			if _, err = tx.Exec(ctx, q, name); err != nil {
				return fmt.Errorf("seed %s %q: %w", table, name, err)
			}
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
