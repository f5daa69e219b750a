package repository

import "github.com/grupodelsur/distribuidora-api/internal/domain/entity"

// PresentacionRepository consulta el directorio de presentaciones (SKUs).
// El alta y edición de presentaciones pertenece al módulo administrativo.
type PresentacionRepository interface {
	GetByID(id string) (*entity.Presentacion, error)
	// ListByMonedaCosto devuelve las presentaciones cuyo costo base está en la
	// moneda indicada, insumo del recálculo masivo de precios.
	ListByMonedaCosto(monedaID string) ([]*entity.Presentacion, error)
}

// AlmacenRepository consulta el directorio de almacenes.
type AlmacenRepository interface {
	GetByID(id string) (*entity.Almacen, error)
}

// MonedaRepository consulta el directorio de monedas.
type MonedaRepository interface {
	GetByID(id string) (*entity.Moneda, error)
}
