package domain

// Catalog names one of the reference tables evaluations point into.
type Catalog string

const (
	CatalogFuel   Catalog = "combustible"
	CatalogWall   Catalog = "muro_solucion"
	CatalogRoof   Catalog = "techo_solucion"
	CatalogWindow Catalog = "ventana_solucion"
)

func (c Catalog) Valid() bool {
	switch c {
	case CatalogFuel, CatalogWall, CatalogRoof, CatalogWindow:
		return true
	}
	return false
}

// CatalogItem is one active entry of a catalog.
type CatalogItem struct {
	ID          int64
	Name        string
	Description string
}
